// Package prep derives the condiments and equipment a serving group needs
// set out before guests sit down. The serving service and the demo seeder
// both build their prep lists here.
package prep

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	soyBowlsPerTable        = 2
	westernSoyBowlsPerTable = 1
)

var (
	hotPotKeywords  = []string{"lẩu", "hot pot", "hotpot", "shabu"}
	westernKeywords = []string{"western", "món âu", "kiểu âu", "steak", "bít tết", "pasta", "mì ý", "pizza", "salad"}
)

type Entry struct {
	Name     string
	Quantity int
	Unit     string
	Note     string
}

// Build returns the prep list for a group with the given name, table count
// and dish names. A table count below one is read as a single table.
func Build(groupName string, tables int, dishes []string) []Entry {
	if tables < 1 {
		tables = 1
	}

	soyPerTable := soyBowlsPerTable
	if IsWestern(groupName, dishes) {
		soyPerTable = westernSoyBowlsPerTable
	}

	entries := []Entry{
		{Name: "Nước tương", Quantity: tables * soyPerTable, Unit: "Chén"},
		{Name: "Tương ớt", Quantity: tables, Unit: "Chén"},
		{Name: "Khăn giấy", Quantity: tables, Unit: "Gói"},
	}

	if HasHotPot(dishes) {
		entries = append(entries, Entry{
			Name:     "Bếp ga mini",
			Quantity: tables,
			Unit:     "Cái",
			Note:     "Kiểm tra bình ga trước khi mang ra",
		})
	}

	return entries
}

func HasHotPot(dishes []string) bool {
	for _, d := range dishes {
		if matchesAny(d, hotPotKeywords) {
			return true
		}
	}
	return false
}

func IsWestern(groupName string, dishes []string) bool {
	if matchesAny(groupName, westernKeywords) {
		return true
	}
	for _, d := range dishes {
		if matchesAny(d, westernKeywords) {
			return true
		}
	}
	return false
}

func matchesAny(s string, keywords []string) bool {
	s = cases.Lower(language.Vietnamese).String(norm.NFC.String(strings.TrimSpace(s)))
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
