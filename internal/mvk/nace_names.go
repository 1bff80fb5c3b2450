package mvk

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed divisions.yaml
var divisionsYAML []byte

var (
	divisionNamesOnce sync.Once
	divisionNames     map[string]string
)

// DivisionName returns the NACE Rev. 2 division name for a code. The code
// may be a full class code ("62.01") or a bare division ("62"). Unknown or
// missing codes return "".
func DivisionName(code string) string {
	divisionNamesOnce.Do(func() {
		if err := yaml.Unmarshal(divisionsYAML, &divisionNames); err != nil {
			// The table is embedded; a parse failure is a build defect.
			panic(err)
		}
	})
	return divisionNames[Division(code)]
}
