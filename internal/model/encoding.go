package model

import "math"

const (
	NumBoxes          = 6
	NumSequences      = 6
	MaxSequenceLength = 30
	NumGrowthCommands = 8
	MaxRadius         = 7
	MaxAnchor         = 5

	MinKG = 0.001
	MaxKG = 0.1
	MinK  = 500.0
	MaxK  = 10000.0
	MinA  = 0.5
	MaxA  = 1.5
	MinB  = 0.0
	MaxB  = 0.66
	MinC  = 0.0
	MaxC  = 2 * math.Pi

	MinTimeInterval = 1.0
	MaxTimeInterval = 10.0
)

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
	Forward
	Back
)

const numDirections = 6

func (d Direction) Valid() bool { return d >= Up && d < numDirections }

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Forward:
		return "forward"
	case Back:
		return "back"
	default:
		return "unknown"
	}
}

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisNone
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	case AxisNone:
		return "none"
	default:
		return "unknown"
	}
}

type ExpressionKind int

const (
	KindBoxDeclaration ExpressionKind = iota
	KindLayAndMove
	KindLayBlockAndMoveCursor
	KindSymmetryScope
)

// Expression is one gene of an encoding. The set of implementations is
// closed: BoxDeclaration, LayAndMove, LayBlockAndMoveCursor and SymmetryScope.
type Expression interface {
	Kind() ExpressionKind
	expression()
}

// GrowthCommand is the subset of expressions legal in the growth list.
type GrowthCommand interface {
	Expression
	growthCommand()
}

// BoxDeclaration is a material preset: point mass plus spring stiffness and
// the breathing parameters of every spring laid with it.
type BoxDeclaration struct {
	KG float64 `json:"kg"`
	K  float64 `json:"k"`
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	C  float64 `json:"c"`
}

func (BoxDeclaration) Kind() ExpressionKind { return KindBoxDeclaration }
func (BoxDeclaration) expression()          {}

// LayAndMove lays material BlockIdx at the cursor, then steps in Direction.
type LayAndMove struct {
	Direction Direction `json:"direction"`
	BlockIdx  int       `json:"block_idx"`
}

func (LayAndMove) Kind() ExpressionKind { return KindLayAndMove }
func (LayAndMove) expression()          {}

// Anchor is the lattice offset, measured through the body, at which a
// growth walk starts.
type Anchor struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (a Anchor) IsZero() bool { return a.X == 0 && a.Y == 0 && a.Z == 0 }

// LayBlockAndMoveCursor runs sequence LayAndMoveIdx, laying a neighborhood of
// the given radius at every step. Anchor is nil for the body command.
type LayBlockAndMoveCursor struct {
	LayAndMoveIdx       int     `json:"lay_and_move_idx"`
	Radius              int     `json:"radius"`
	ThicknessIgnoreAxis Axis    `json:"thickness_ignore_axis"`
	Anchor              *Anchor `json:"anchor,omitempty"`
}

func (LayBlockAndMoveCursor) Kind() ExpressionKind { return KindLayBlockAndMoveCursor }
func (LayBlockAndMoveCursor) expression()          {}
func (LayBlockAndMoveCursor) growthCommand()       {}

// SymmetryScope mirrors the next growth lay command across Axis.
type SymmetryScope struct {
	Axis Axis `json:"axis"`
}

func (SymmetryScope) Kind() ExpressionKind { return KindSymmetryScope }
func (SymmetryScope) expression()          {}
func (SymmetryScope) growthCommand()       {}

// Encoding is the genome of one oozebot.
type Encoding struct {
	ID                 uint64                           `json:"id"`
	Fitness            float64                          `json:"fitness"`
	LengthAdj          float64                          `json:"length_adj"`
	GlobalTimeInterval float64                          `json:"global_time_interval"`
	Boxes              [NumBoxes]BoxDeclaration         `json:"boxes"`
	Sequences          [NumSequences][]LayAndMove       `json:"sequences"`
	Body               LayBlockAndMoveCursor            `json:"body"`
	Growth             [NumGrowthCommands]GrowthCommand `json:"-"`
}
