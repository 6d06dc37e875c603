package model

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultLetters     = "----------a-b-cd-ef-g--hijklm--nopqrstuvwxyz"
	DefaultPlaceholder = '-'
)

// LetterMap maps strip indices to the letter painted above that LED.
type LetterMap struct {
	src         string
	placeholder rune
	size        int
	idx         map[rune]int
}

func NewLetterMap(s string, placeholder rune) LetterMap {
	m := LetterMap{
		src:         s,
		placeholder: placeholder,
		size:        utf8.RuneCountInString(s),
		idx:         make(map[rune]int),
	}
	i := 0
	for _, r := range s {
		if r != placeholder {
			r = unicode.ToLower(r)
			if _, dup := m.idx[r]; !dup {
				m.idx[r] = i
			}
		}
		i++
	}
	return m
}

func DefaultLetterMap() LetterMap {
	return NewLetterMap(DefaultLetters, DefaultPlaceholder)
}

// Index returns the LED index for r, case-insensitively. The placeholder and
// any letter missing from the map report false.
func (m LetterMap) Index(r rune) (int, bool) {
	i, ok := m.idx[unicode.ToLower(r)]
	return i, ok
}

// Len is the number of slots, placeholders included.
func (m LetterMap) Len() int { return m.size }

// Letters is the number of spellable letters.
func (m LetterMap) Letters() int { return len(m.idx) }

func (m LetterMap) String() string { return m.src }

// Validate checks the map fits on a strip of n LEDs.
func (m LetterMap) Validate(n int) error {
	if m.size > n {
		return fmt.Errorf("letter map has %d slots, strip has %d LEDs", m.size, n)
	}
	return nil
}
