package game

// GameType identifies which of the supported games a room or queue slot is for.
type GameType string

const (
	GameRPS       GameType = "rps"
	GameTicTacToe GameType = "tictactoe"
)

// Valid reports whether gt names a supported game.
func (gt GameType) Valid() bool {
	return gt == GameRPS || gt == GameTicTacToe
}

// RPS moves
const (
	MoveRock     = "rock"
	MovePaper    = "paper"
	MoveScissors = "scissors"
)

// ValidRPSMove reports whether move is one of rock/paper/scissors.
func ValidRPSMove(move string) bool {
	return move == MoveRock || move == MovePaper || move == MoveScissors
}

// Match rules
const (
	// RPS: winner of a round gains rpsPointsPerRound; first to rpsMaxPoints wins the match.
	rpsPointsPerRound = 10
	rpsMaxPoints      = 100

	// TicTacToe: first to tttTargetScore round wins takes the match.
	tttTargetScore = 5
)

// Round result values (RPS)
const (
	ResultDraw    = "draw"
	ResultTimeout = "timeout"
	ResultPlayer1 = "player1"
	ResultPlayer2 = "player2"
)

// TicTacToe symbols; the host (player1) is always X.
const (
	SymbolX = "X"
	SymbolO = "O"
)
