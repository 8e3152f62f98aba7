package entity

type Branch struct {
	BaseNoDelete
	Name    string `db:"name"`
	Address string `db:"address"`
}
