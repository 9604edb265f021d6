package linsolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result    interface{} `json:"result,omitempty"`
	String    string      `json:"string,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
	Equation  int         `json:"equation,omitempty"`
}

// ErrorKindOf maps an error onto the short label used in tool and HTTP
// responses: "parse", "singular", "range" or "invalid_request".
func ErrorKindOf(err error) string {
	switch {
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrSingular):
		return "singular"
	case errors.Is(err, ErrOutOfRange):
		return "range"
	default:
		return "invalid_request"
	}
}

func toolError(err error) ToolResponse {
	resp := ToolResponse{Error: err.Error(), ErrorKind: ErrorKindOf(err)}
	var pe *ParseError
	if errors.As(err, &pe) {
		resp.Equation = pe.Equation
	}
	return resp
}

func ratJSON(r *big.Rat) map[string]interface{} {
	f, _ := r.Float64()
	return map[string]interface{}{"exact": r.RatString(), "float": f}
}

func HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getPair := func() (string, string, error) {
		eq1, err := getString("eq1")
		if err != nil {
			return "", "", err
		}
		eq2, err := getString("eq2")
		if err != nil {
			return "", "", err
		}
		return eq1, eq2, nil
	}
	getNumber := func(key string) (*big.Rat, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch n := v.(type) {
		case float64:
			return new(big.Rat).SetFloat64(n), nil
		case string:
			r, ok := new(big.Rat).SetString(n)
			if !ok {
				return nil, fmt.Errorf("param %s is not a number: %q", key, n)
			}
			return r, nil
		default:
			return nil, fmt.Errorf("param %s must be a number", key)
		}
	}
	respondSolution := func(sol RatSolution) ToolResponse {
		f, err := sol.Finite()
		if err != nil {
			return toolError(err)
		}
		return ToolResponse{
			Result: map[string]interface{}{
				"x":       f.X,
				"y":       f.Y,
				"x_exact": sol.X.RatString(),
				"y_exact": sol.Y.RatString(),
			},
			String: sol.String(),
		}
	}

	switch req.Tool {
	case "normalize":
		s, err := getString("equation")
		if err != nil {
			return toolError(err)
		}
		n := Normalize(s)
		return ToolResponse{Result: n, String: n}

	case "parse_equation":
		s, err := getString("equation")
		if err != nil {
			return toolError(err)
		}
		t, err := ParseEquationExact(s)
		if err != nil {
			return toolError(err)
		}
		return ToolResponse{
			Result: map[string]interface{}{"a": ratJSON(t.A), "b": ratJSON(t.B), "c": ratJSON(t.C)},
			String: t.String(),
		}

	case "solve_system":
		eq1, eq2, err := getPair()
		if err != nil {
			return toolError(err)
		}
		sol, err := SolveExact(eq1, eq2)
		if err != nil {
			return toolError(err)
		}
		return respondSolution(sol)

	case "solve_coefficients":
		keys := []string{"a1", "b1", "c1", "a2", "b2", "c2"}
		vals := make([]*big.Rat, len(keys))
		for i, k := range keys {
			r, err := getNumber(k)
			if err != nil {
				return toolError(err)
			}
			vals[i] = r
		}
		sol, err := SolveTriplesExact(
			RatTriple{A: vals[0], B: vals[1], C: vals[2]},
			RatTriple{A: vals[3], B: vals[4], C: vals[5]},
		)
		if err != nil {
			return toolError(err)
		}
		return respondSolution(sol)

	case "classify_system":
		eq1, eq2, err := getPair()
		if err != nil {
			return toolError(err)
		}
		sys, err := ParseSystem(eq1, eq2)
		if err != nil {
			return toolError(err)
		}
		kind := sys.Classify()
		return ToolResponse{
			Result: map[string]interface{}{"determinant": ratJSON(sys.Det()), "kind": kind.String()},
			String: kind.String(),
		}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool), ErrorKind: "invalid_request"}
}

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("normalize", "Collapse whitespace and newlines in an equation", []string{"equation"}, map[string]string{"equation": "string"}),
		ts("parse_equation", "Parse 'a x + b y = c' into coefficients a, b, c", []string{"equation"}, map[string]string{"equation": "string"}),
		ts("solve_system", "Solve two equations 'a x + b y = c' for x and y", []string{"eq1", "eq2"}, map[string]string{"eq1": "string", "eq2": "string"}),
		ts("solve_coefficients", "2×2 linear system: a1*x+b1*y=c1, a2*x+b2*y=c2", []string{"a1", "b1", "c1", "a2", "b2", "c2"},
			map[string]string{"a1": "number", "b1": "number", "c1": "number", "a2": "number", "b2": "number", "c2": "number"}),
		ts("classify_system", "Report determinant and whether the system is unique, inconsistent or dependent", []string{"eq1", "eq2"}, map[string]string{"eq1": "string", "eq2": "string"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
