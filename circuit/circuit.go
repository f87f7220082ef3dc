// Package circuit provides a small gate-level quantum circuit
// representation with OpenQASM 2.0 serialization. It is the input shape
// the backend adapters consume and serialize for submission.
package circuit

import "fmt"

// Gate is one operation in a circuit. Measure uses Bits for the
// classical destination register; all other gates leave Bits empty.
type Gate struct {
	Name   string
	Qubits []int
	Bits   []int
	Params []float64
}

// Circuit is an ordered sequence of gates over a qubit register and a
// classical bit register.
type Circuit struct {
	Name   string
	Qubits int
	Bits   int
	gates  []Gate
	err    error
}

// New creates a circuit with the given qubit count and an equally sized
// classical register.
func New(name string, qubits int) *Circuit {
	c := &Circuit{Name: name, Qubits: qubits, Bits: qubits}
	if qubits <= 0 {
		c.err = fmt.Errorf("circuit %q: qubit count must be positive", name)
	}
	return c
}

// Gates returns the gate sequence. The returned slice must not be mutated.
func (c *Circuit) Gates() []Gate {
	return c.gates
}

// Err returns the first construction error, if any. Builder methods
// record errors instead of failing so calls can be chained.
func (c *Circuit) Err() error {
	return c.err
}

func (c *Circuit) add(name string, params []float64, qubits ...int) *Circuit {
	if c.err != nil {
		return c
	}
	for _, q := range qubits {
		if q < 0 || q >= c.Qubits {
			c.err = fmt.Errorf("circuit %q: qubit %d out of range [0,%d)", c.Name, q, c.Qubits)
			return c
		}
	}
	c.gates = append(c.gates, Gate{Name: name, Qubits: qubits, Params: params})
	return c
}

func (c *Circuit) X(q int) *Circuit  { return c.add("x", nil, q) }
func (c *Circuit) Y(q int) *Circuit  { return c.add("y", nil, q) }
func (c *Circuit) Z(q int) *Circuit  { return c.add("z", nil, q) }
func (c *Circuit) H(q int) *Circuit  { return c.add("h", nil, q) }
func (c *Circuit) S(q int) *Circuit  { return c.add("s", nil, q) }
func (c *Circuit) Sdg(q int) *Circuit { return c.add("sdg", nil, q) }
func (c *Circuit) T(q int) *Circuit  { return c.add("t", nil, q) }
func (c *Circuit) Tdg(q int) *Circuit { return c.add("tdg", nil, q) }

func (c *Circuit) RX(theta float64, q int) *Circuit { return c.add("rx", []float64{theta}, q) }
func (c *Circuit) RY(theta float64, q int) *Circuit { return c.add("ry", []float64{theta}, q) }
func (c *Circuit) RZ(theta float64, q int) *Circuit { return c.add("rz", []float64{theta}, q) }

func (c *Circuit) CX(control, target int) *Circuit { return c.add("cx", nil, control, target) }
func (c *Circuit) CZ(control, target int) *Circuit { return c.add("cz", nil, control, target) }
func (c *Circuit) ZZ(a, b int) *Circuit            { return c.add("zz", nil, a, b) }

func (c *Circuit) CCX(c1, c2, target int) *Circuit { return c.add("ccx", nil, c1, c2, target) }

func (c *Circuit) Reset(q int) *Circuit { return c.add("reset", nil, q) }

// Measure records qubit q into classical bit b.
func (c *Circuit) Measure(q, b int) *Circuit {
	if c.err != nil {
		return c
	}
	if q < 0 || q >= c.Qubits {
		c.err = fmt.Errorf("circuit %q: qubit %d out of range [0,%d)", c.Name, q, c.Qubits)
		return c
	}
	if b < 0 || b >= c.Bits {
		c.err = fmt.Errorf("circuit %q: bit %d out of range [0,%d)", c.Name, b, c.Bits)
		return c
	}
	c.gates = append(c.gates, Gate{Name: "measure", Qubits: []int{q}, Bits: []int{b}})
	return c
}

// MeasureAll measures every qubit into the classical bit of the same index.
func (c *Circuit) MeasureAll() *Circuit {
	for q := 0; q < c.Qubits; q++ {
		c.Measure(q, q)
	}
	return c
}
