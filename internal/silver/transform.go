// Package silver validates bronze records against their provider contract,
// normalizes them, and assigns each one its cross-provider movie key.
package silver

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"cinelake/internal/bronze"
	"cinelake/internal/contracts"
	"cinelake/internal/lake"
	"cinelake/internal/stage"
)

// Result summarizes one batch transform. Drift never aborts: rejected
// rows are dropped and reported, accepted rows flow on.
type Result struct {
	Records    []lake.SilverRecord
	Drift      []Drift
	Duplicates int
	Rejected   int
}

// Transform maps, normalizes, and validates one batch's raw records.
// All records must belong to the same provider; a provider without a
// contract or mapping is a configuration failure that aborts this batch's
// transform only.
func Transform(records []bronze.RawRecord, registry *contracts.Registry, ingestedAt time.Time, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(records) == 0 {
		return Result{}, nil
	}

	provider := records[0].Provider
	contract, err := registry.ContractFor(provider)
	if err != nil {
		return Result{}, stage.Wrap(stage.ErrConfiguration, "silver", "transform",
			fmt.Sprintf("provider %q has no contract", provider), err)
	}
	mapping, err := registry.MappingFor(provider)
	if err != nil {
		return Result{}, stage.Wrap(stage.ErrConfiguration, "silver", "transform",
			fmt.Sprintf("provider %q has no mapping", provider), err)
	}

	var result Result
	// Within-batch dedup keeps the last occurrence per movie key; row
	// indexes preserve delivery order across files.
	byKey := map[string]int{}

	for _, raw := range records {
		record, drifts, ok := transformRecord(raw, contract, mapping, ingestedAt)
		result.Drift = append(result.Drift, drifts...)
		if !ok {
			result.Rejected++
			continue
		}

		if idx, seen := byKey[record.MovieKey]; seen {
			result.Duplicates++
			if record.SourceRow >= result.Records[idx].SourceRow {
				result.Records[idx] = record
			}
			continue
		}
		byKey[record.MovieKey] = len(result.Records)
		result.Records = append(result.Records, record)
	}

	if len(result.Drift) > 0 {
		logger.Warn("contract drift observed",
			"provider", provider, "batch", records[0].BatchID,
			"drift", len(result.Drift), "rejected", result.Rejected)
	}
	return result, nil
}

func transformRecord(raw bronze.RawRecord, contract contracts.Contract, mapping contracts.Mapping, ingestedAt time.Time) (lake.SilverRecord, []Drift, bool) {
	drift := func(kind DriftKind, field, detail string) Drift {
		return Drift{
			Kind:       kind,
			Provider:   raw.Provider,
			BatchID:    raw.BatchID,
			SourceFile: raw.SourceFile,
			RowIndex:   raw.RowIndex,
			Field:      field,
			Detail:     detail,
		}
	}

	var drifts []Drift
	projected := make(map[string]any, len(contract.Fields))
	consumed := make(map[string]bool, len(mapping.Fields))

	for _, fm := range mapping.Fields {
		consumed[fm.Source] = true
		value, present := raw.Fields[fm.Source]
		if !present || isAbsent(value) {
			continue
		}
		if s, isString := value.(string); isString {
			value = applyTransforms(s, fm.Transforms)
			if isAbsent(value) {
				continue
			}
		}
		spec, _ := contract.Field(fm.Target)
		coerced, ok := coerce(value, spec.Type)
		if !ok {
			drifts = append(drifts, drift(DriftTypeMismatch, fm.Target,
				fmt.Sprintf("cannot coerce %v to %s", value, spec.Type)))
			continue
		}
		projected[fm.Target] = coerced
	}

	// Unmapped raw fields that match a declared name pass through as-is;
	// anything else is unexpected and dropped.
	names := make([]string, 0, len(raw.Fields))
	for name := range raw.Fields {
		if !consumed[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		value := raw.Fields[name]
		spec, declared := contract.Field(name)
		if !declared {
			drifts = append(drifts, drift(DriftUnexpectedField, name, "field not declared in contract"))
			continue
		}
		if _, already := projected[name]; already || isAbsent(value) {
			continue
		}
		coerced, ok := coerce(value, spec.Type)
		if !ok {
			drifts = append(drifts, drift(DriftTypeMismatch, name,
				fmt.Sprintf("cannot coerce %v to %s", value, spec.Type)))
			continue
		}
		projected[name] = coerced
	}

	for _, spec := range contract.Fields {
		if spec.Required {
			if _, present := projected[spec.Name]; !present {
				drifts = append(drifts, drift(DriftMissingField, spec.Name, "required field absent"))
			}
		}
	}

	title, _ := projected["title"].(string)
	year, _ := projected["year"].(int)
	key, keyed := movieKey(contract, raw.Provider, projected, title, year)
	if !keyed {
		drifts = append(drifts, drift(DriftMissingField, "movie_key", "cannot derive record identity"))
	}

	for _, d := range drifts {
		if d.rejects() {
			return lake.SilverRecord{}, drifts, false
		}
	}

	return lake.SilverRecord{
		MovieKey:   key,
		Provider:   raw.Provider,
		Title:      title,
		Year:       year,
		Fields:     projected,
		BatchID:    raw.BatchID,
		SourceRow:  raw.RowIndex,
		IngestedAt: ingestedAt,
	}, drifts, true
}
