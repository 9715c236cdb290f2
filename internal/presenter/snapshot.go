package presenter

// Snapshot запоминает последние значения областей; используется JSON-представлением.
type Snapshot struct {
	Counter string `json:"contador"`
	Rows    []Row  `json:"linhas"`
	Total   string `json:"total"`
}

var _ Regions = (*Snapshot)(nil)

func (s *Snapshot) SetCounter(text string) { s.Counter = text }

func (s *Snapshot) ReplaceRows(rows []Row) error {
	s.Rows = append(make([]Row, 0, len(rows)), rows...)
	return nil
}

func (s *Snapshot) SetTotal(text string) { s.Total = text }
