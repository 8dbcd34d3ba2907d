package resolve

import (
	"context"

	"iconpng/internal/model"
)

// Report is the full outcome of resolving one piece of text. It is what
// --resolve prints and what /api/resolve returns.
type Report struct {
	Input     string          `json:"input"`
	Reference model.Reference `json:"reference"`
	Resolved  bool            `json:"resolved"`
	Tier      Tier            `json:"tier,omitempty"`
	Attempts  Attempts        `json:"attempts,omitempty"`
	Symbols   int             `json:"symbols,omitempty"`
	ErrorKind string          `json:"errorKind,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Explain parses text and, when that succeeds, resolves the reference.
// Failures are described in the report rather than returned.
func Explain(ctx context.Context, p *Parser, reg *Registry, text string) Report {
	rep := Report{Input: text}
	ref, err := p.Parse(text)
	if err != nil {
		rep.fail(err)
		return rep
	}
	return explainRef(ctx, reg, rep, ref)
}

// ExplainFields resolves separately supplied path and symbol fields.
func ExplainFields(ctx context.Context, p *Parser, reg *Registry, packagePath, symbol string) Report {
	rep := Report{}
	ref, err := p.FromFields(packagePath, symbol)
	if err != nil {
		rep.fail(err)
		return rep
	}
	return explainRef(ctx, reg, rep, ref)
}

func explainRef(ctx context.Context, reg *Registry, rep Report, ref model.Reference) Report {
	rep.Reference = ref
	mod, attempts, err := reg.Module(ctx, ref.PackagePath)
	rep.Attempts = attempts
	if err != nil {
		rep.fail(err)
		return rep
	}
	rep.Symbols = mod.Len()
	if winner, ok := attempts.Winner(); ok {
		rep.Tier = winner.Tier
	}
	if _, ok := mod.Lookup(ref.SymbolName); !ok {
		rep.fail(model.Errorf(model.KindSymbolNotFound, "icon '%s' not found in '%s'", ref.SymbolName, ref.PackagePath))
		return rep
	}
	rep.Resolved = true
	return rep
}

func (r *Report) fail(err error) {
	r.ErrorKind = model.KindOf(err).String()
	r.Error = model.Message(err)
}
