package restdoc

import "strconv"

// paramKinds is the fixed precedence of parameter annotations. A parameter is
// bound by the first kind found; KindContext binds nothing.
var paramKinds = [...]struct {
	kind    Kind
	binding BindingKind
}{
	{KindPathParam, BindPath},
	{KindMatrixParam, BindMatrix},
	{KindQueryParam, BindQuery},
	{KindContext, BindBody}, // binding unused: context parameters are skipped
}

type boundParams struct {
	path, matrix, query Bindings
	body                *ParameterBinding
}

// bindParameters classifies each formal parameter, looking up annotations
// positionally across decls. Parameters without any annotation become the
// body; with several candidates the last one wins unless strict is set.
func bindParameters(params []Param, decls lookupChain, strict bool) (boundParams, error) {
	var out boundParams
	var bodies []Param

params:
	for _, p := range params {
		for _, pk := range paramKinds {
			a, ok := decls.findParam(p.Position, pk.kind)
			if !ok {
				continue
			}
			if pk.kind == KindContext {
				continue params
			}

			b := ParameterBinding{
				Kind:     pk.binding,
				Position: p.Position,
				Name:     a.Value(),
				Param:    p,
			}
			if b.Name == "" {
				b.Name = p.Name
			}

			var dup bool
			switch pk.binding {
			case BindPath:
				dup = out.path.put(b)
			case BindMatrix:
				dup = out.matrix.put(b)
			case BindQuery:
				dup = out.query.put(b)
			}
			if dup && strict {
				return boundParams{}, Errorf(CodeAmbiguous, "%s parameter %q is bound more than once", pk.binding, b.Name).
					WithDetail("position", p.Position)
			}
			continue params
		}

		bodies = append(bodies, p)
		out.body = &ParameterBinding{
			Kind:     BindBody,
			Position: p.Position,
			Param:    p,
		}
	}

	if strict && len(bodies) > 1 {
		names := make([]string, len(bodies))
		for i, p := range bodies {
			names[i] = paramLabel(p)
		}
		return boundParams{}, Errorf(CodeAmbiguous, "%d parameters are eligible as request body", len(bodies)).
			WithDetail("parameters", names)
	}
	return out, nil
}

func paramLabel(p Param) string {
	if p.Name == "" || p.Name == "_" {
		return "#" + strconv.Itoa(p.Position)
	}
	return p.Name
}
