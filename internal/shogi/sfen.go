package shogi

import (
	"fmt"
	"strconv"
	"strings"
)

// StartSFEN is the standard shogi starting position.
const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// handOrder is the conventional SFEN hand ordering: descending material
// value, Black's pieces before White's.
var handOrder = []PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// ParseSFEN parses a four-field SFEN record: board, side to move, hands, and
// move count.
func ParseSFEN(s string) (Position, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Position{}, fmt.Errorf("shogi: malformed sfen %q", s)
	}

	pos := NewEmptyPosition()
	if err := pos.parseBoard(fields[0]); err != nil {
		return Position{}, err
	}

	switch fields[1] {
	case "b":
		pos.Turn = Black
	case "w":
		pos.Turn = White
	default:
		return Position{}, fmt.Errorf("shogi: invalid side to move %q", fields[1])
	}

	if err := pos.parseHand(fields[2]); err != nil {
		return Position{}, err
	}

	if len(fields) >= 4 {
		if n, err := strconv.Atoi(fields[3]); err == nil {
			pos.Ply = n - 1
		}
	}

	pos.Key = pos.ComputeKey()
	pos.Checked = pos.InCheck(pos.Turn)
	return pos, nil
}

func (pos *Position) parseBoard(s string) error {
	rows := strings.Split(s, "/")
	if len(rows) != RankNum {
		return fmt.Errorf("shogi: expected %d board rows, got %d", RankNum, len(rows))
	}

	for y, row := range rows {
		x := 0
		promote := false
		for i := 0; i < len(row); i++ {
			ch := row[i]
			switch {
			case ch == '+':
				promote = true
			case ch >= '1' && ch <= '9':
				x += int(ch - '0')
				promote = false
			default:
				if x >= FileNum {
					return fmt.Errorf("shogi: board row %q overflows file count", row)
				}
				c := Black
				upper := ch
				if ch >= 'a' && ch <= 'z' {
					c = White
					upper = ch - 'a' + 'A'
				}
				base, ok := charPieces[upper]
				if !ok {
					return fmt.Errorf("shogi: unknown piece letter %q", string(ch))
				}
				if promote {
					base = base.Promote()
				}
				pos.set(GetSquare(x, y), NewPiece(base, c))
				x++
				promote = false
			}
		}
	}
	return nil
}

func (pos *Position) parseHand(s string) error {
	if s == "-" {
		return nil
	}
	i := 0
	for i < len(s) {
		count := 1
		if s[i] >= '0' && s[i] <= '9' {
			start := i
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				i++
			}
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return fmt.Errorf("shogi: bad hand count in %q", s)
			}
			count = n
		}
		if i >= len(s) {
			return fmt.Errorf("shogi: truncated hand field %q", s)
		}
		ch := s[i]
		i++
		c := Black
		upper := ch
		if ch >= 'a' && ch <= 'z' {
			c = White
			upper = ch - 'a' + 'A'
		}
		pt, ok := charPieces[upper]
		if !ok {
			return fmt.Errorf("shogi: unknown hand piece %q", string(ch))
		}
		pos.Hand[c][pt] += uint8(count)
	}
	return nil
}

// SFEN renders the position back into SFEN notation.
func (pos *Position) SFEN() string {
	rows := make([]string, RankNum)
	for y := 0; y < RankNum; y++ {
		var sb strings.Builder
		empty := 0
		for x := 0; x < FileNum; x++ {
			p := pos.Piece[GetSquare(x, y)]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		rows[y] = sb.String()
	}

	turn := "b"
	if pos.Turn == White {
		turn = "w"
	}
	return fmt.Sprintf("%s %s %s %d", strings.Join(rows, "/"), turn, pos.handSFEN(), pos.Ply+1)
}

func (pos *Position) handSFEN() string {
	var sb strings.Builder
	for _, c := range [ColorNum]Color{Black, White} {
		for _, pt := range handOrder {
			n := pos.Hand[c][pt]
			if n == 0 {
				continue
			}
			if n > 1 {
				sb.WriteString(strconv.Itoa(int(n)))
			}
			ch := pieceChars[pt]
			if c == White {
				ch = ch - 'A' + 'a'
			}
			sb.WriteByte(ch)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// ParseMove parses an SFEN move literal ("7g7f", "7g7f+", "P*5e") against the
// current position, filling in the captured-piece field from the board.
func (pos *Position) ParseMove(s string) (Move, error) {
	if s == "resign" || s == "win" {
		return NoMove, nil
	}
	if len(s) >= 4 && s[1] == '*' {
		pt, ok := charPieces[s[0]&^0x20]
		if !ok {
			return NoMove, fmt.Errorf("shogi: unknown drop piece %q", s)
		}
		to, err := ParseSquare(s[2:4])
		if err != nil {
			return NoMove, err
		}
		return NewDropMove(to, pt), nil
	}
	if len(s) < 4 {
		return NoMove, fmt.Errorf("shogi: malformed move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	promote := len(s) >= 5 && s[4] == '+'

	p := pos.Piece[from]
	captured := pos.Piece[to]
	capturedType := Empty
	if !captured.IsEmpty() && !captured.IsWall() {
		capturedType = captured.Type().Base()
	}
	return NewBoardMove(from, to, p.Type(), promote, capturedType), nil
}
