package chesscom

// MonthlyArchive is one published archive page: every finished game of one
// player for one calendar month.
type MonthlyArchive struct {
	Games []ArchivedGame `json:"games"`
}

type ArchivedGame struct {
	PGN        string      `json:"pgn"`
	Accuracies *Accuracies `json:"accuracies,omitempty"`
	White      Player      `json:"white"`
	Black      Player      `json:"black"`
}

type Accuracies struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

type Player struct {
	Username string `json:"username"`
}
