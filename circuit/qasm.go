package circuit

import (
	"fmt"
	"strconv"
	"strings"
)

// QASM renders the circuit as OpenQASM 2.0 source, the wire format for
// submission. The format is lossless for the supported gate set.
func (c *Circuit) QASM() (string, error) {
	if c.err != nil {
		return "", c.err
	}

	var b strings.Builder
	b.WriteString("OPENQASM 2.0;\n")
	b.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&b, "qreg q[%d];\n", c.Qubits)
	fmt.Fprintf(&b, "creg c[%d];\n", c.Bits)

	for _, g := range c.gates {
		if g.Name == "measure" {
			fmt.Fprintf(&b, "measure q[%d] -> c[%d];\n", g.Qubits[0], g.Bits[0])
			continue
		}
		b.WriteString(g.Name)
		if len(g.Params) > 0 {
			params := make([]string, len(g.Params))
			for i, p := range g.Params {
				params[i] = strconv.FormatFloat(p, 'g', -1, 64)
			}
			b.WriteString("(" + strings.Join(params, ",") + ")")
		}
		operands := make([]string, len(g.Qubits))
		for i, q := range g.Qubits {
			operands[i] = fmt.Sprintf("q[%d]", q)
		}
		b.WriteString(" " + strings.Join(operands, ",") + ";\n")
	}

	return b.String(), nil
}

// Parse reads OpenQASM 2.0 source produced by QASM back into a Circuit.
// Only the gate set QASM emits is accepted; a single qreg/creg pair is
// assumed.
func Parse(src string) (*Circuit, error) {
	c := &Circuit{Name: "parsed"}
	sawHeader := false

	for lineNo, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		line = strings.TrimSuffix(line, ";")

		switch {
		case strings.HasPrefix(line, "OPENQASM"):
			if version := strings.TrimSpace(strings.TrimPrefix(line, "OPENQASM")); version != "2.0" {
				return nil, fmt.Errorf("line %d: unsupported OPENQASM version %q", lineNo+1, version)
			}
			sawHeader = true
		case strings.HasPrefix(line, "include"):
			// qelib1.inc is implied
		case strings.HasPrefix(line, "qreg"):
			n, err := parseRegisterSize(line, "qreg", "q")
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			c.Qubits = n
		case strings.HasPrefix(line, "creg"):
			n, err := parseRegisterSize(line, "creg", "c")
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			c.Bits = n
		case strings.HasPrefix(line, "measure"):
			gate, err := parseMeasure(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			c.gates = append(c.gates, gate)
		default:
			gate, err := parseGate(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			c.gates = append(c.gates, gate)
		}
	}

	if !sawHeader {
		return nil, fmt.Errorf("missing OPENQASM header")
	}
	if c.Qubits == 0 {
		return nil, fmt.Errorf("missing qreg declaration")
	}
	return c, nil
}

func parseRegisterSize(line, keyword, register string) (int, error) {
	decl := strings.TrimSpace(strings.TrimPrefix(line, keyword))
	prefix := register + "["
	if !strings.HasPrefix(decl, prefix) || !strings.HasSuffix(decl, "]") {
		return 0, fmt.Errorf("malformed %s declaration %q", keyword, line)
	}
	n, err := strconv.Atoi(decl[len(prefix) : len(decl)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s size in %q", keyword, line)
	}
	return n, nil
}

func parseMeasure(line string) (Gate, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "measure"))
	src, dst, found := strings.Cut(rest, "->")
	if !found {
		return Gate{}, fmt.Errorf("malformed measure %q", line)
	}
	q, err := parseOperand(strings.TrimSpace(src), "q")
	if err != nil {
		return Gate{}, err
	}
	b, err := parseOperand(strings.TrimSpace(dst), "c")
	if err != nil {
		return Gate{}, err
	}
	return Gate{Name: "measure", Qubits: []int{q}, Bits: []int{b}}, nil
}

var knownGates = map[string]struct{ params, qubits int }{
	"x": {0, 1}, "y": {0, 1}, "z": {0, 1}, "h": {0, 1},
	"s": {0, 1}, "sdg": {0, 1}, "t": {0, 1}, "tdg": {0, 1},
	"rx": {1, 1}, "ry": {1, 1}, "rz": {1, 1},
	"cx": {0, 2}, "cz": {0, 2}, "zz": {0, 2}, "ccx": {0, 3},
	"reset": {0, 1},
}

func parseGate(line string) (Gate, error) {
	head, operandPart, found := strings.Cut(line, " ")
	if !found {
		return Gate{}, fmt.Errorf("malformed statement %q", line)
	}

	name := head
	var params []float64
	if open := strings.IndexByte(head, '('); open >= 0 {
		if !strings.HasSuffix(head, ")") {
			return Gate{}, fmt.Errorf("malformed parameter list in %q", line)
		}
		name = head[:open]
		for _, p := range strings.Split(head[open+1:len(head)-1], ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return Gate{}, fmt.Errorf("invalid parameter %q in %q", p, line)
			}
			params = append(params, v)
		}
	}

	spec, ok := knownGates[name]
	if !ok {
		return Gate{}, fmt.Errorf("unsupported gate %q", name)
	}
	if len(params) != spec.params {
		return Gate{}, fmt.Errorf("gate %q expects %d parameter(s)", name, spec.params)
	}

	var qubits []int
	for _, op := range strings.Split(operandPart, ",") {
		q, err := parseOperand(strings.TrimSpace(op), "q")
		if err != nil {
			return Gate{}, err
		}
		qubits = append(qubits, q)
	}
	if len(qubits) != spec.qubits {
		return Gate{}, fmt.Errorf("gate %q expects %d operand(s)", name, spec.qubits)
	}

	return Gate{Name: name, Qubits: qubits, Params: params}, nil
}

func parseOperand(op, register string) (int, error) {
	prefix := register + "["
	if !strings.HasPrefix(op, prefix) || !strings.HasSuffix(op, "]") {
		return 0, fmt.Errorf("malformed operand %q", op)
	}
	idx, err := strconv.Atoi(op[len(prefix) : len(op)-1])
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("invalid register index in %q", op)
	}
	return idx, nil
}
