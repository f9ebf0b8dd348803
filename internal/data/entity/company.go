package entity

type Company struct {
	Base
	Name        string  `db:"name"`
	Address     string  `db:"address"`
	Website     *string `db:"website"`
	Description *string `db:"description"`
	Telephone   string  `db:"telephone"`
}
