// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package screen

import (
	"net/mail"
	"regexp"
	"slices"
	"strings"

	"github.com/danielhkuo/ward-admin/models"
)

var (
	alnumSpace   = regexp.MustCompile(`^[a-zA-Z0-9 ]*$`)
	lettersSpace = regexp.MustCompile(`^[A-Za-z\s]*$`)
	digitsOnly   = regexp.MustCompile(`^[0-9]*$`)
)

const maxDescriptionWords = 160

var centerTypes = []string{"Plant 1", "Plant 2"}

func phoneNumber(v string) string {
	switch {
	case strings.ContainsAny(v, " \t"):
		return "Number must not contain spaces."
	case !digitsOnly.MatchString(v):
		return "Number must contain only digits."
	case len(v) > 10:
		return "Number must be 10 digits long."
	}
	return ""
}

func personName(v string) string {
	if !lettersSpace.MatchString(v) {
		return "Name must contain only letters and spaces."
	}
	return ""
}

func alnumNoLeadingSpace(label string) Check {
	return func(v string) string {
		if !alnumSpace.MatchString(v) {
			return label + " must contain only letters, digits and spaces."
		}
		if strings.HasPrefix(v, " ") {
			return label + " must not start with a space."
		}
		return ""
	}
}

var specs = []Spec{
	{
		Name:         "members",
		Title:        "Member Login",
		Collection:   models.CollectionMembers,
		SearchFields: []string{"name", "contact", "userId"},
		Required:     []string{"name", "userId", "password", "contact", "wardNo"},
		Checks: map[string]Check{
			"name":    personName,
			"contact": phoneNumber,
		},
		Unique: []UniqueRule{
			{Field: "contact", CaseInsensitive: true, Message: "This contact number already exists."},
			{Field: "userId", CaseInsensitive: true, Message: "This user id already exists."},
			{Field: "wardNo", CaseInsensitive: true, Message: "Only one member can exist per ward"},
		},
		Defaults: models.Fields{models.FieldArchived: false},
		Archive:  ArchiveActiveOnly,
	},
	{
		Name:         "member-archive",
		Title:        "Member Login Archive",
		Collection:   models.CollectionMembers,
		SearchFields: []string{"name", "userId", "contact"},
		Archive:      ArchiveArchivedOnly,
		ReadOnly:     true,
	},
	{
		Name:         "wards",
		Title:        "Ward Info",
		Collection:   models.CollectionWards,
		SearchFields: []string{"wardName", "wardNumber"},
		Required:     []string{"wardName", "wardNumber"},
		Checks: map[string]Check{
			"wardName": alnumNoLeadingSpace("Ward name"),
			"wardNumber": func(v string) string {
				if !digitsOnly.MatchString(v) {
					return "Ward number must contain only digits."
				}
				return ""
			},
		},
		Unique: []UniqueRule{
			{Field: "wardName", CaseInsensitive: true, Message: "Ward name or number must be unique"},
			{Field: "wardNumber", Message: "Ward name or number must be unique"},
		},
		UniqueOnUpdate: true,
	},
	{
		Name:         "complaints",
		Title:        "Complaint Templates",
		Collection:   models.CollectionComplaints,
		SearchFields: []string{"complaint", "description"},
		Required:     []string{"complaint"},
		Checks: map[string]Check{
			"complaint": alnumNoLeadingSpace("Complaint"),
			"description": func(v string) string {
				if len(strings.Split(v, " ")) > maxDescriptionWords {
					return "Description must be at most 160 words."
				}
				return ""
			},
		},
		Unique: []UniqueRule{
			{Field: "complaint", CaseInsensitive: true, Message: "Complaint must be unique"},
		},
	},
	{
		Name:         "centers",
		Title:        "Centers",
		Collection:   models.CollectionCenters,
		SearchFields: []string{"centerName", "centerType", "sapPlantCode"},
		Required:     []string{"centerType", "sapPlantCode", "centerName", "contactNumber", "email", "address"},
		Checks: map[string]Check{
			"centerType": func(v string) string {
				if !slices.Contains(centerTypes, v) {
					return "Center type must be one of: " + strings.Join(centerTypes, ", ") + "."
				}
				return ""
			},
			"contactNumber": phoneNumber,
			"email": func(v string) string {
				if v == "" {
					return ""
				}
				if _, err := mail.ParseAddress(v); err != nil || strings.ContainsAny(v, "<> ") {
					return "Enter a valid email address."
				}
				return ""
			},
		},
		Defaults: models.Fields{"inProductionAllowed": false, "isConfirmationAllowed": false},
	},
	{
		Name:         "mandis",
		Title:        "Mandis",
		Collection:   models.CollectionMandis,
		SearchFields: []string{"name", "contact", "region"},
		Required:     []string{"name", "contact"},
		Checks: map[string]Check{
			"name": func(v string) string {
				if msg := personName(v); msg != "" {
					return msg
				}
				if len(v) > 20 {
					return "Name must be max 20 characters."
				}
				return ""
			},
			"contact": phoneNumber,
		},
		Unique: []UniqueRule{
			{Field: "contact", Message: "This contact number already exists."},
		},
	},
}

// Specs returns every screen in menu order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

func Lookup(name string) (Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}
