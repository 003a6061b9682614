// Package lookup resolves camera queries. A lookup is answered from an
// in-process cache, then from the store, and only then by asking the
// model. Model output goes through the extraction pipeline: a clean
// record is stored as authoritative, a salvaged one is stored flagged for
// review and archived, and a failure is archived and returned to the
// caller, who decides whether to retry.
package lookup
