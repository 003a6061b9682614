// Package parse turns unreliable text from a generative model into
// structured data.
//
// [Extract] is the strict pipeline used for records that get persisted. It
// runs three stages over the raw text:
//
//   - [Normalize] repairs syntax the model tends to get wrong: markdown
//     fences and prose around the object, control characters, comments,
//     trailing commas, digit separators, leading plus signs and truncated
//     URL strings. It never invents content.
//   - [ParseStrict] accepts only RFC 8259 JSON. When it rejects the text,
//     [Salvage] recovers whatever "key": value pairs it can find.
//   - [Coerce] maps the tree onto a [Schema], enforcing required fields and
//     filling defaults.
//
// The result is an [Outcome]: a [*Success] when strict parsing worked, a
// [*PartialSuccess] when the record was rebuilt from salvaged pairs, or a
// [*Failure] naming what went wrong. The raw text travels with every
// variant.
//
// [ParseStringAs] is the lenient counterpart for low-stakes payloads. It
// leans on jsonrepair and schema-envelope unwrapping and will happily
// guess.
package parse
