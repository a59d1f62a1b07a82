package domain

// Finish — вариант отделки поверхности изделия.
type Finish string

// Material — вариант материала изделия.
type Material string

const (
	FinishDefault  Finish = "default"
	FinishTextured Finish = "textured"

	MaterialDefault       Material = "default"
	MaterialPolycarbonate Material = "polycarbonate"
)

// Configuration — сохранённый набор опций изделия. Для расчёта цены неизменяем.
type Configuration struct {
	ID       string   `json:"id"`
	Finish   Finish   `json:"finish"`
	Material Material `json:"material"`
}

// User — идентичность текущего пользователя из сессии.
type User struct {
	ID string `json:"id"`
}
