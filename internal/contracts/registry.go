package contracts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"cinelake/internal/stage"
)

// Registry indexes contracts and mappings by provider. Read-only after Load.
type Registry struct {
	contracts map[string]Contract
	mappings  map[string]Mapping
	providers []string
}

type contractsDocument struct {
	Providers []struct {
		Provider string      `yaml:"provider"`
		Fields   []FieldSpec `yaml:"fields"`
	} `yaml:"providers"`
}

type mappingsDocument struct {
	Providers []struct {
		Provider string     `yaml:"provider"`
		Fields   []FieldMap `yaml:"fields"`
	} `yaml:"providers"`
}

// Load reads and cross-validates the contract and mapping sources.
func Load(contractsPath, mappingsPath string) (*Registry, error) {
	var contractsDoc contractsDocument
	if err := loadYAML(contractsPath, &contractsDoc); err != nil {
		return nil, stage.Wrap(stage.ErrConfiguration, "registry", "load contracts", contractsPath, err)
	}
	var mappingsDoc mappingsDocument
	if err := loadYAML(mappingsPath, &mappingsDoc); err != nil {
		return nil, stage.Wrap(stage.ErrConfiguration, "registry", "load mappings", mappingsPath, err)
	}

	registry := &Registry{
		contracts: make(map[string]Contract, len(contractsDoc.Providers)),
		mappings:  make(map[string]Mapping, len(mappingsDoc.Providers)),
	}

	for _, entry := range contractsDoc.Providers {
		contract, err := buildContract(entry.Provider, entry.Fields)
		if err != nil {
			return nil, err
		}
		if _, dup := registry.contracts[contract.Provider]; dup {
			return nil, stage.Wrap(stage.ErrConfiguration, "registry", "load contracts",
				fmt.Sprintf("duplicate provider %q", contract.Provider), nil)
		}
		registry.contracts[contract.Provider] = contract
		registry.providers = append(registry.providers, contract.Provider)
	}
	sort.Strings(registry.providers)

	for _, entry := range mappingsDoc.Providers {
		mapping, err := buildMapping(entry.Provider, entry.Fields, registry.contracts)
		if err != nil {
			return nil, err
		}
		if _, dup := registry.mappings[mapping.Provider]; dup {
			return nil, stage.Wrap(stage.ErrConfiguration, "registry", "load mappings",
				fmt.Sprintf("duplicate provider %q", mapping.Provider), nil)
		}
		registry.mappings[mapping.Provider] = mapping
	}

	return registry, nil
}

// ContractFor returns the contract declared for a provider.
func (r *Registry) ContractFor(provider string) (Contract, error) {
	contract, ok := r.contracts[normalizeProvider(provider)]
	if !ok {
		return Contract{}, stage.Wrap(stage.ErrNotFound, "registry", "contract lookup", provider, nil)
	}
	return contract, nil
}

// MappingFor returns the field mapping declared for a provider.
func (r *Registry) MappingFor(provider string) (Mapping, error) {
	mapping, ok := r.mappings[normalizeProvider(provider)]
	if !ok {
		return Mapping{}, stage.Wrap(stage.ErrNotFound, "registry", "mapping lookup", provider, nil)
	}
	return mapping, nil
}

// Providers returns the sorted list of providers with a declared contract.
func (r *Registry) Providers() []string {
	cp := make([]string, len(r.providers))
	copy(cp, r.providers)
	return cp
}

func buildContract(provider string, fields []FieldSpec) (Contract, error) {
	provider = normalizeProvider(provider)
	if provider == "" {
		return Contract{}, stage.Wrap(stage.ErrConfiguration, "registry", "load contracts", "provider name missing", nil)
	}
	if len(fields) == 0 {
		return Contract{}, stage.Wrap(stage.ErrConfiguration, "registry", "load contracts",
			fmt.Sprintf("provider %q declares no fields", provider), nil)
	}

	contract := Contract{
		Provider: provider,
		Fields:   fields,
		byName:   make(map[string]FieldSpec, len(fields)),
	}
	for i, spec := range fields {
		spec.Name = strings.TrimSpace(spec.Name)
		if spec.Name == "" {
			return Contract{}, stage.Wrap(stage.ErrConfiguration, "registry", "load contracts",
				fmt.Sprintf("provider %q: field %d has no name", provider, i), nil)
		}
		if spec.Type == "" {
			spec.Type = FieldString
		}
		switch spec.Type {
		case FieldString, FieldInt, FieldFloat:
		default:
			return Contract{}, stage.Wrap(stage.ErrConfiguration, "registry", "load contracts",
				fmt.Sprintf("provider %q: field %q has unknown type %q", provider, spec.Name, spec.Type), nil)
		}
		if _, dup := contract.byName[spec.Name]; dup {
			return Contract{}, stage.Wrap(stage.ErrConfiguration, "registry", "load contracts",
				fmt.Sprintf("provider %q: duplicate field %q", provider, spec.Name), nil)
		}
		if spec.Key {
			if contract.key != "" {
				return Contract{}, stage.Wrap(stage.ErrConfiguration, "registry", "load contracts",
					fmt.Sprintf("provider %q: multiple key fields (%q, %q)", provider, contract.key, spec.Name), nil)
			}
			contract.key = spec.Name
		}
		contract.byName[spec.Name] = spec
		contract.Fields[i] = spec
	}
	return contract, nil
}

func buildMapping(provider string, fields []FieldMap, known map[string]Contract) (Mapping, error) {
	provider = normalizeProvider(provider)
	if provider == "" {
		return Mapping{}, stage.Wrap(stage.ErrConfiguration, "registry", "load mappings", "provider name missing", nil)
	}
	contract, ok := known[provider]
	if !ok {
		return Mapping{}, stage.Wrap(stage.ErrConfiguration, "registry", "load mappings",
			fmt.Sprintf("provider %q has no contract", provider), nil)
	}

	mapping := Mapping{Provider: provider, Fields: fields}
	targets := make(map[string]struct{}, len(fields))
	for i, fm := range fields {
		fm.Source = strings.TrimSpace(fm.Source)
		fm.Target = strings.TrimSpace(fm.Target)
		if fm.Source == "" || fm.Target == "" {
			return Mapping{}, stage.Wrap(stage.ErrConfiguration, "registry", "load mappings",
				fmt.Sprintf("provider %q: mapping %d needs source and target", provider, i), nil)
		}
		if _, declared := contract.Field(fm.Target); !declared {
			return Mapping{}, stage.Wrap(stage.ErrConfiguration, "registry", "load mappings",
				fmt.Sprintf("provider %q: target %q not declared in contract", provider, fm.Target), nil)
		}
		if _, dup := targets[fm.Target]; dup {
			return Mapping{}, stage.Wrap(stage.ErrConfiguration, "registry", "load mappings",
				fmt.Sprintf("provider %q: duplicate target %q", provider, fm.Target), nil)
		}
		targets[fm.Target] = struct{}{}
		for _, transform := range fm.Transforms {
			if _, knownT := knownTransforms[transform]; !knownT {
				return Mapping{}, stage.Wrap(stage.ErrConfiguration, "registry", "load mappings",
					fmt.Sprintf("provider %q: unknown transform %q on target %q", provider, transform, fm.Target), nil)
			}
		}
		mapping.Fields[i] = fm
	}
	return mapping, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
