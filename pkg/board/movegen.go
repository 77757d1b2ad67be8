package board

// promotions in the order the four promotion moves are emitted.
var promotions = [4]Piece{Queen, Rook, Bishop, Knight}

// PseudoLegalMoves enumerates all moves for the side to move, ignoring whether the own
// king is left in check. Castling is only generated when the flag is set, the squares
// between king and rook are empty and the king does not pass through an attacked square.
func (p Position) PseudoLegalMoves() []Move {
	turn := p.Turn()
	var ret []Move

	ret = p.appendPawnMoves(ret, turn)
	for fromBB := p.Piece(turn, Knight); fromBB != 0; fromBB = fromBB.ClearLastPop() {
		from := fromBB.LastPopSquare()
		ret = p.appendLeaperMoves(ret, turn, Knight, from, KnightAttackboard(from))
	}
	for fromBB := p.Piece(turn, Bishop); fromBB != 0; fromBB = fromBB.ClearLastPop() {
		from := fromBB.LastPopSquare()
		ret = p.appendSliderMoves(ret, turn, Bishop, from, BishopAttackboard(from), BishopPath)
	}
	for fromBB := p.Piece(turn, Rook); fromBB != 0; fromBB = fromBB.ClearLastPop() {
		from := fromBB.LastPopSquare()
		ret = p.appendSliderMoves(ret, turn, Rook, from, RookAttackboard(from), RookPath)
	}
	for fromBB := p.Piece(turn, Queen); fromBB != 0; fromBB = fromBB.ClearLastPop() {
		from := fromBB.LastPopSquare()
		ret = p.appendSliderMoves(ret, turn, Queen, from, BishopAttackboard(from), BishopPath)
		ret = p.appendSliderMoves(ret, turn, Queen, from, RookAttackboard(from), RookPath)
	}

	king := p.KingSquare(turn)
	ret = p.appendLeaperMoves(ret, turn, King, king, KingAttackboard(king))
	ret = p.appendCastlingMoves(ret, turn)

	return ret
}

// LegalMoves enumerates all legal moves for the side to move.
func (p Position) LegalMoves() []Move {
	var ret []Move
	for _, m := range p.PseudoLegalMoves() {
		if !p.Apply(m).IsChecked(m.Color) {
			ret = append(ret, m)
		}
	}
	return ret
}

// HasLegalMove returns true iff the side to move has any legal move.
func (p Position) HasLegalMove() bool {
	for _, m := range p.PseudoLegalMoves() {
		if !p.Apply(m).IsChecked(m.Color) {
			return true
		}
	}
	return false
}

// Apply returns a new Position with the move applied: side to move flipped, halfmove
// counter and en passant updated, castling flags cleared whenever the king or the
// relevant rook moves or is captured, and the Zobrist hash updated incrementally.
// The move must be pseudo-legal.
func (p Position) Apply(m Move) Position {
	n := p
	mover := m.Color

	if m.Piece == Pawn || m.IsCapture() {
		n.counter = 0
	} else {
		n.counter = p.counter + 1
	}

	// (1) Move pieces.

	n.xor(m.From, mover, m.Piece)
	switch m.Type {
	case Capture, CapturePromotion:
		n.xor(m.To, mover.Opponent(), m.Capture)
	case EnPassant:
		n.xor(enPassantVictim(mover, m.To), mover.Opponent(), Pawn)
	case KingSideCastle:
		n.xor(NewSquare(FileH, m.From.Rank()), mover, Rook)
		n.xor(NewSquare(FileF, m.From.Rank()), mover, Rook)
	case QueenSideCastle:
		n.xor(NewSquare(FileA, m.From.Rank()), mover, Rook)
		n.xor(NewSquare(FileD, m.From.Rank()), mover, Rook)
	}

	placed := m.Piece
	if m.Promotion.IsValid() {
		placed = m.Promotion
	}
	n.xor(m.To, mover, placed)

	// (2) Update flags.

	flags := n.flags
	flags ^= BitMask(whiteToMoveFlag)
	flags &^= BitRank(Rank3) | BitRank(Rank6)
	if m.Type == Jump {
		flags |= BitMask(Square(int(m.From)+pawnForward(mover)))
	}
	switch m.Type {
	case KingSideCastle, QueenSideCastle:
		if mover == White {
			flags |= BitMask(whiteCastledFlag)
		} else {
			flags |= BitMask(blackCastledFlag)
		}
	}
	flags &^= lostCastlingFlags(m)

	n.setFlags(flags)
	return n
}

func (p Position) appendLeaperMoves(ret []Move, turn Color, piece Piece, from Square, targets Bitboard) []Move {
	for toBB := targets &^ p.Color(turn); toBB != 0; toBB = toBB.ClearLastPop() {
		to := toBB.LastPopSquare()
		ret = append(ret, p.newMove(turn, piece, from, to))
	}
	return ret
}

func (p Position) appendSliderMoves(ret []Move, turn Color, piece Piece, from Square, targets Bitboard, path func(from, to Square) Bitboard) []Move {
	occupied := p.Occupied()
	for toBB := targets &^ p.Color(turn); toBB != 0; toBB = toBB.ClearLastPop() {
		to := toBB.LastPopSquare()
		if path(from, to)&occupied != 0 {
			continue // blocked
		}
		ret = append(ret, p.newMove(turn, piece, from, to))
	}
	return ret
}

func (p Position) appendPawnMoves(ret []Move, turn Color) []Move {
	occupied := p.Occupied()
	ep, hasEP := p.EnPassant()

	for fromBB := p.Piece(turn, Pawn); fromBB != 0; fromBB = fromBB.ClearLastPop() {
		from := fromBB.LastPopSquare()
		for toBB := PawnAttackboard(turn, from) &^ p.Color(turn); toBB != 0; toBB = toBB.ClearLastPop() {
			to := toBB.LastPopSquare()

			if from.File() == to.File() {
				// Forward: the path must be free.

				if PawnPath(turn, from, to)&occupied != 0 {
					continue
				}
				t := Push
				if to.Rank() == from.Rank()+2 || from.Rank() == to.Rank()+2 {
					t = Jump
				}
				ret = p.appendPawnMove(ret, Move{Type: t, Color: turn, Piece: Pawn, From: from, To: to})
				continue
			}

			// Diagonal: the target must hold an opponent piece or be the en passant square.

			if occupied.IsSet(to) {
				_, captured, _ := p.Square(to)
				ret = p.appendPawnMove(ret, Move{Type: Capture, Color: turn, Piece: Pawn, From: from, To: to, Capture: captured})
			} else if hasEP && to == ep {
				ret = append(ret, Move{Type: EnPassant, Color: turn, Piece: Pawn, From: from, To: to, Capture: Pawn})
			}
		}
	}
	return ret
}

// appendPawnMove emits the move, fanned out into the four promotion choices when the
// pawn reaches its last rank.
func (p Position) appendPawnMove(ret []Move, m Move) []Move {
	last := Rank8
	if m.Color == Black {
		last = Rank1
	}
	if m.To.Rank() != last {
		return append(ret, m)
	}

	for _, promo := range promotions {
		fanned := m
		fanned.Promotion = promo
		if m.Type == Capture {
			fanned.Type = CapturePromotion
		} else {
			fanned.Type = Promotion
		}
		ret = append(ret, fanned)
	}
	return ret
}

func (p Position) appendCastlingMoves(ret []Move, turn Color) []Move {
	rank := Rank1
	if turn == Black {
		rank = Rank8
	}
	kingFrom := NewSquare(FileE, rank)
	if !p.Piece(turn, King).IsSet(kingFrom) {
		return ret
	}

	occupied := p.Occupied()
	opp := turn.Opponent()
	rights := p.Castling()

	if rights.IsAllowed(WhiteKingSideCastle << (2 * Castling(turn))) {
		rookFrom := NewSquare(FileH, rank)
		between := BitMask(NewSquare(FileF, rank)) | BitMask(NewSquare(FileG, rank))
		if p.Piece(turn, Rook).IsSet(rookFrom) && occupied&between == 0 &&
			!p.IsAttacked(kingFrom, opp) && !p.IsAttacked(NewSquare(FileF, rank), opp) {
			ret = append(ret, Move{Type: KingSideCastle, Color: turn, Piece: King, From: kingFrom, To: NewSquare(FileG, rank)})
		}
	}
	if rights.IsAllowed(WhiteQueenSideCastle << (2 * Castling(turn))) {
		rookFrom := NewSquare(FileA, rank)
		between := BitMask(NewSquare(FileB, rank)) | BitMask(NewSquare(FileC, rank)) | BitMask(NewSquare(FileD, rank))
		if p.Piece(turn, Rook).IsSet(rookFrom) && occupied&between == 0 &&
			!p.IsAttacked(kingFrom, opp) && !p.IsAttacked(NewSquare(FileD, rank), opp) {
			ret = append(ret, Move{Type: QueenSideCastle, Color: turn, Piece: King, From: kingFrom, To: NewSquare(FileC, rank)})
		}
	}
	return ret
}

// newMove builds a Normal or Capture move for an officer.
func (p Position) newMove(turn Color, piece Piece, from, to Square) Move {
	m := Move{Type: Normal, Color: turn, Piece: piece, From: from, To: to}
	if !p.IsEmpty(to) {
		_, captured, _ := p.Square(to)
		m.Type = Capture
		m.Capture = captured
	}
	return m
}

// FlipTurn returns the position with only the side to move toggled. Used for opponent
// mobility queries.
func (p Position) FlipTurn() Position {
	n := p
	n.setFlags(p.flags ^ BitMask(whiteToMoveFlag))
	return n
}

func pawnForward(c Color) int {
	if c == White {
		return 8
	}
	return -8
}

func enPassantVictim(mover Color, to Square) Square {
	return Square(int(to) - pawnForward(mover))
}

func lostCastlingFlags(m Move) Bitboard {
	var lost Bitboard
	if m.Piece == King {
		if m.Color == White {
			lost |= BitMask(G1) | BitMask(C1)
		} else {
			lost |= BitMask(G8) | BitMask(C8)
		}
	}
	for _, sq := range [2]Square{m.From, m.To} {
		switch sq {
		case H1:
			lost |= BitMask(G1)
		case A1:
			lost |= BitMask(C1)
		case H8:
			lost |= BitMask(G8)
		case A8:
			lost |= BitMask(C8)
		}
	}
	return lost
}
