package parse

import (
	"context"
	"errors"

	"github.com/leofalp/mirror/providers/observability"
)

// Stage names how far a pipeline run got before coercion.
type Stage string

const (
	StageNormalized       Stage = "normalized"
	StageStrictParsed     Stage = "strict_parsed"
	StageSalvageAttempted Stage = "salvage_attempted"
)

type extractOptions struct {
	observer observability.Provider
}

// Option configures Extract.
type Option func(*extractOptions)

// WithObserver reports each run as a parse.extract span on observer.
func WithObserver(observer observability.Provider) Option {
	return func(o *extractOptions) {
		o.observer = observer
	}
}

// Extract turns raw model output into a record shaped by schema.
//
// The text is normalized and parsed strictly. If strict parsing fails, or
// yields something other than an object, pairs are salvaged from the
// normalized text instead. The resulting tree is coerced onto schema.
// A strictly parsed record is a *Success; a salvaged one is at best a
// *PartialSuccess. Extract never retries and never blocks.
func Extract(raw string, schema Schema, opts ...Option) Outcome {
	return ExtractContext(context.Background(), raw, schema, opts...)
}

// ExtractContext is Extract with a context for the observer span.
func ExtractContext(ctx context.Context, raw string, schema Schema, opts ...Option) Outcome {
	options := &extractOptions{}
	for _, opt := range opts {
		opt(options)
	}

	run := run{raw: raw, schema: schema}
	outcome := run.execute()

	if options.observer != nil {
		report(ctx, options.observer, &run, outcome)
	}
	return outcome
}

type run struct {
	raw        string
	schema     Schema
	normalized string
	repairs    []string
	stage      Stage
}

func (r *run) execute() Outcome {
	r.normalized, r.repairs = normalize(r.raw)
	r.stage = StageNormalized

	tree, strictErr := ParseStrict(r.normalized)
	if strictErr == nil {
		if _, isObject := tree.(*Object); isObject {
			r.stage = StageStrictParsed
			return r.coerce(tree, nil)
		}
		strictErr = &SyntaxError{Reason: "top-level value is " + describe(tree) + ", not an object"}
	}

	r.stage = StageSalvageAttempted
	if errors.Is(strictErr, ErrTooDeep) {
		return &Failure{Kind: KindMalformedInput, Cause: strictErr, Raw: r.raw}
	}
	salvaged := Salvage(r.normalized)
	if salvaged.Empty() {
		return &Failure{Kind: KindMalformedInput, Cause: strictErr, Salvage: salvaged, Raw: r.raw}
	}
	return r.coerce(salvaged.Fields, salvaged)
}

func (r *run) coerce(tree any, salvaged *SalvageResult) Outcome {
	record, notes, err := Coerce(tree, r.schema)
	if err != nil {
		var failure *Failure
		if !errors.As(err, &failure) {
			failure = &Failure{Kind: KindMalformedInput, Cause: err}
		}
		failure.Salvage = salvaged
		failure.Raw = r.raw
		return failure
	}
	if salvaged != nil {
		return &PartialSuccess{
			Record:   record,
			Salvaged: salvaged,
			Notes:    notes,
			Warning:  WarningPartialParse,
			Raw:      r.raw,
		}
	}
	return &Success{Record: record, Notes: notes, Raw: r.raw}
}

func report(ctx context.Context, observer observability.Provider, r *run, outcome Outcome) {
	_, span := observer.StartSpan(ctx, observability.SpanParseExtract,
		observability.String(observability.AttrParseSchema, r.schema.Name),
		observability.Int(observability.AttrParseRawBytes, len(r.raw)),
	)
	defer span.End()

	span.SetAttributes(
		observability.Int(observability.AttrParseNormalizedBytes, len(r.normalized)),
		observability.StringSlice(observability.AttrParseRepairs, r.repairs),
		observability.String(observability.AttrParseStage, string(r.stage)),
		observability.ParseStatus(string(outcome.Status())),
	)

	switch o := outcome.(type) {
	case *PartialSuccess:
		span.SetAttributes(observability.Int(observability.AttrParseSalvagedFields, o.Salvaged.Found))
		observability.Succeed(span, string(o.Warning))
	case *Failure:
		span.SetAttributes(observability.String(observability.AttrParseFailureKind, string(o.Kind)))
		observability.Fail(span, o, string(o.Kind))
	default:
		observability.Succeed(span, "")
	}

	observer.Counter(observability.MetricParseOutcomes).Add(ctx, 1,
		observability.ParseStatus(string(outcome.Status())),
	)
}
