package parser

type Parser interface {
	Parse(file string) (*Track, error)
}
