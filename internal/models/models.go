package models

import "time"

// TextFile is a plain-text fragment stored in the source folder
type TextFile struct {
	ID   string
	Name string
}

// Session tracks which code a contributor is currently working on
// and how many photos were archived against it
type Session struct {
	AssignedCode string
	PhotoCount   int
}

// ConsentRecord is one opt-in row in the consent log
type ConsentRecord struct {
	DisplayName string
	Timestamp   time.Time
}
