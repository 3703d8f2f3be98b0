// Package plan defines the compiled-expression wire format and plan caches.
// Planners emit wire programs; Assemble lowers them onto the interpreter's
// step path. Encoding is canonical CBOR, so equal programs produce equal
// bytes and one content hash.
package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode holds CBOR encoding options with canonical mode for
// deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("plan: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Opcode identifies one instruction kind.
type Opcode uint8

const (
	OpConst         Opcode = 1
	OpIdent         Opcode = 2
	OpSlot          Opcode = 3
	OpSelect        Opcode = 4
	OpCall          Opcode = 5
	OpCreateList    Opcode = 6
	OpCreateMap     Opcode = 7
	OpCreateStruct  Opcode = 8
	OpJump          Opcode = 9
	OpCondJump      Opcode = 10
	OpBoolCheckJump Opcode = 11
	OpCompreInit    Opcode = 12
	OpCompreNext    Opcode = 13
	OpCompreCond    Opcode = 14
	OpCompreFinish  Opcode = 15
)

func (o Opcode) String() string {
	switch o {
	case OpConst:
		return "const"
	case OpIdent:
		return "ident"
	case OpSlot:
		return "slot"
	case OpSelect:
		return "select"
	case OpCall:
		return "call"
	case OpCreateList:
		return "create_list"
	case OpCreateMap:
		return "create_map"
	case OpCreateStruct:
		return "create_struct"
	case OpJump:
		return "jump"
	case OpCondJump:
		return "cond_jump"
	case OpBoolCheckJump:
		return "bool_check_jump"
	case OpCompreInit:
		return "compre_init"
	case OpCompreNext:
		return "compre_next"
	case OpCompreCond:
		return "compre_cond"
	case OpCompreFinish:
		return "compre_finish"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Instruction is one wire-format step. Operand fields are used per opcode;
// unused fields stay at their zero value and encode away.
type Instruction struct {
	Op     Opcode `cbor:"1,keyasint"`
	ExprID int64  `cbor:"2,keyasint,omitempty"`

	// Literal indexes the program's literal pool (OpConst).
	Literal int `cbor:"3,keyasint,omitempty"`
	// Name carries identifier, field, function, or struct type names.
	Name string `cbor:"4,keyasint,omitempty"`
	// Count is the operand count for calls and aggregates.
	Count int `cbor:"5,keyasint,omitempty"`

	// Offset and Offset2 are relative jump targets. Comprehension steps use
	// Offset for the result jump and Offset2 for the error jump.
	Offset  int `cbor:"6,keyasint,omitempty"`
	Offset2 int `cbor:"7,keyasint,omitempty"`

	// SlotA/SlotB and VarA/VarB describe comprehension variables: the
	// iteration slot/name and the accumulator slot/name.
	SlotA int    `cbor:"8,keyasint,omitempty"`
	SlotB int    `cbor:"9,keyasint,omitempty"`
	VarA  string `cbor:"10,keyasint,omitempty"`
	VarB  string `cbor:"11,keyasint,omitempty"`

	// Fields lists struct field names in push order (OpCreateStruct).
	Fields []string `cbor:"12,keyasint,omitempty"`

	// Flag: select presence test, cond-jump condition, compre shortcircuit.
	Flag bool `cbor:"13,keyasint,omitempty"`
	// Flag2: cond-jump leave-on-stack.
	Flag2 bool `cbor:"14,keyasint,omitempty"`
}

// LiteralKind tags an encodable literal.
type LiteralKind uint8

const (
	LitNull      LiteralKind = 0
	LitBool      LiteralKind = 1
	LitInt       LiteralKind = 2
	LitUint      LiteralKind = 3
	LitDouble    LiteralKind = 4
	LitString    LiteralKind = 5
	LitBytes     LiteralKind = 6
	LitDuration  LiteralKind = 7
	LitTimestamp LiteralKind = 8
	LitList      LiteralKind = 9
	LitMap       LiteralKind = 10
)

// Literal is one literal-pool entry. Aggregate literals nest.
type Literal struct {
	Kind    LiteralKind `cbor:"1,keyasint"`
	Bool    bool        `cbor:"2,keyasint,omitempty"`
	Int     int64       `cbor:"3,keyasint,omitempty"`
	Uint    uint64      `cbor:"4,keyasint,omitempty"`
	Double  float64     `cbor:"5,keyasint,omitempty"`
	Str     string      `cbor:"6,keyasint,omitempty"`
	Bytes   []byte      `cbor:"7,keyasint,omitempty"`
	Seconds int64       `cbor:"8,keyasint,omitempty"`
	Nanos   int32       `cbor:"9,keyasint,omitempty"`
	Elems   []Literal   `cbor:"10,keyasint,omitempty"`
	Keys    []Literal   `cbor:"11,keyasint,omitempty"`
	Vals    []Literal   `cbor:"12,keyasint,omitempty"`
}

// Fingerprint pins the engine options a program was planned against, so a
// cache hit cannot silently change evaluation semantics.
type Fingerprint struct {
	UnknownProcessing      uint8 `cbor:"1,keyasint,omitempty"`
	MissingAttributeErrors bool  `cbor:"2,keyasint,omitempty"`
	MaxIterations          int64 `cbor:"3,keyasint,omitempty"`
	HeterogeneousEquality  bool  `cbor:"4,keyasint,omitempty"`
	ListContains           bool  `cbor:"5,keyasint,omitempty"`
}

// Program is a compiled expression in wire form.
type Program struct {
	Version      uint32        `cbor:"1,keyasint"`
	Instructions []Instruction `cbor:"2,keyasint"`
	Literals     []Literal     `cbor:"3,keyasint,omitempty"`
	SlotCount    int           `cbor:"4,keyasint,omitempty"`
	Options      Fingerprint   `cbor:"5,keyasint,omitempty"`
}

// WireVersion is the current Program.Version value.
const WireVersion = 1

// Marshal serializes a Program to canonical CBOR bytes.
func Marshal(p *Program) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// Unmarshal deserializes a Program from CBOR bytes.
func Unmarshal(data []byte) (*Program, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("plan: unmarshal program: %w", err)
	}
	if p.Version != WireVersion {
		return nil, fmt.Errorf("plan: unsupported wire version %d", p.Version)
	}
	return &p, nil
}

// ContentHash returns the hex SHA-256 of the program's canonical encoding.
func ContentHash(p *Program) (string, error) {
	data, err := Marshal(p)
	if err != nil {
		return "", fmt.Errorf("plan: hash program: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
