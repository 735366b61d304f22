package resolver

import (
	"github.com/provide-io/featurecat/go/featurecat/pkg/catalog"
)

// Reason names the step that settled a feature's state
type Reason string

const (
	ReasonNoEdition Reason = "no_edition"
	ReasonUnknown   Reason = "unknown_feature"
	ReasonDefault   Reason = "default"
	ReasonEnable    Reason = "enable_token"
	ReasonDisable   Reason = "disable_token"
)

// Decision is the outcome of evaluating one feature
type Decision struct {
	Name    string
	Hash    uint32
	Enabled bool
	Reason  Reason

	ActiveCode  int64
	DefaultCode int64
	EnableCode  int64 // 0 unless the enable token matched
	DisableCode int64 // 0 unless the disable token matched
}

// Explain evaluates the named feature and reports how the result was reached
func (r *Resolver) Explain(name string) Decision {
	d := r.evaluate(catalog.StringHash(name))
	d.Name = name
	return d
}

// evaluate applies the default, enable and disable steps in order:
// the default code enables at or after it, a matching enable token can
// enable a feature the default left off, and a matching disable token turns
// off whatever the first two steps enabled.
func (r *Resolver) evaluate(hash uint32) Decision {
	d := Decision{Hash: hash, Reason: ReasonNoEdition}

	ac := r.active.Load()
	if ac == nil {
		return d
	}
	d.ActiveCode = ac.Code

	f, ok := r.catalog.Load().Feature(hash)
	if !ok {
		d.Reason = ReasonUnknown
		return d
	}
	d.DefaultCode = f.DefaultCode

	d.Enabled = ac.Code >= f.DefaultCode
	d.Reason = ReasonDefault

	if !d.Enabled {
		if code, ok := catalog.MatchLocaleCode(f.EnableToken, ac.Locale); ok {
			d.EnableCode = code
			d.Enabled = ac.Code >= code
			d.Reason = ReasonEnable
		}
	}

	if d.Enabled {
		if code, ok := catalog.MatchLocaleCode(f.DisableToken, ac.Locale); ok {
			d.DisableCode = code
			d.Enabled = ac.Code < code
			d.Reason = ReasonDisable
		}
	}

	return d
}
