package lint

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"surgelint/internal/diag"
)

//go:embed catalog.yaml
var catalogYAML []byte

// RuleInfo is the documentation entry of a rule.
type RuleInfo struct {
	Code diag.Code `yaml:"code" json:"code"`
	Tags []string  `yaml:"tags" json:"tags"`
	Docs string    `yaml:"docs" json:"docs"`
}

type catalogFile struct {
	Rules []RuleInfo `yaml:"rules"`
}

var loadCatalog = sync.OnceValues(func() (map[diag.Code]RuleInfo, error) {
	var f catalogFile
	if err := yaml.Unmarshal(catalogYAML, &f); err != nil {
		return nil, fmt.Errorf("parse rule catalog: %w", err)
	}
	out := make(map[diag.Code]RuleInfo, len(f.Rules))
	for _, r := range f.Rules {
		if _, dup := out[r.Code]; dup {
			return nil, fmt.Errorf("rule catalog: duplicate code %q", r.Code)
		}
		out[r.Code] = r
	}
	return out, nil
})

// lookupInfo returns the catalog entry for code. The catalog is compiled in,
// so a malformed catalog is a build defect.
func lookupInfo(code diag.Code) RuleInfo {
	cat, err := loadCatalog()
	if err != nil {
		panic(err)
	}
	info, ok := cat[code]
	if !ok {
		return RuleInfo{Code: code}
	}
	return info
}
