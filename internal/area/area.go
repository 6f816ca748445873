package area

type Upozilla struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Village struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	UnionID int    `json:"union_id"`
}

type Union struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	UpozillaID int       `json:"upozilla_id"`
	Villages   []Village `json:"villages"`
}
