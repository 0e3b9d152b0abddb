package score

import (
	"strings"

	"github.com/eualt/trustscore/internal/model"
)

// AssignBaseClass classifies an entry from its jurisdiction and open-source level.
// Fully open-source always wins; otherwise EU members, then European non-EU states,
// then configured meta codes (eu, oss, us). Everything else is "rest".
func (e *Engine) AssignBaseClass(country string, level model.OpenSourceLevel) model.BaseClass {
	if level == model.OpenSourceFull {
		return model.BaseClassFOSS
	}

	code := normalizeCountry(country)
	if e.euMembers[code] {
		return model.BaseClassEU
	}
	if e.europeanNonEU[code] {
		return model.BaseClassNonEU
	}
	if class, ok := e.metaCodes[code]; ok {
		return class
	}
	return model.BaseClassRest
}

func normalizeCountry(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
