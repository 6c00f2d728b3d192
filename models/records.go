// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Typed views of the screen collections. These are what the CSV import
// decodes into before the values are handed to a screen as Fields.

type Member struct {
	Name     string `csv:"name" json:"name"`
	Role     string `csv:"role" json:"role"`
	UserID   string `csv:"userId" json:"userId"`
	Password string `csv:"password" json:"password"`
	Contact  string `csv:"contact" json:"contact"`
	WardNo   string `csv:"wardNo" json:"wardNo"`
	WardName string `csv:"wardName" json:"wardName"`
}

func (m Member) Fields() Fields {
	return Fields{
		"name":     m.Name,
		"role":     m.Role,
		"userId":   m.UserID,
		"password": m.Password,
		"contact":  m.Contact,
		"wardNo":   m.WardNo,
		"wardName": m.WardName,
	}
}

type Ward struct {
	WardName   string `csv:"wardName" json:"wardName"`
	WardNumber string `csv:"wardNumber" json:"wardNumber"`
}

func (w Ward) Fields() Fields {
	return Fields{"wardName": w.WardName, "wardNumber": w.WardNumber}
}

type ComplaintTemplate struct {
	Complaint   string `csv:"complaint" json:"complaint"`
	Description string `csv:"description" json:"description"`
}

func (c ComplaintTemplate) Fields() Fields {
	return Fields{"complaint": c.Complaint, "description": c.Description}
}

type Center struct {
	CenterType            string `csv:"centerType" json:"centerType"`
	SAPPlantCode          string `csv:"sapPlantCode" json:"sapPlantCode"`
	CenterName            string `csv:"centerName" json:"centerName"`
	ContactNumber         string `csv:"contactNumber" json:"contactNumber"`
	Email                 string `csv:"email" json:"email"`
	InProductionAllowed   bool   `csv:"inProductionAllowed" json:"inProductionAllowed"`
	IsConfirmationAllowed bool   `csv:"isConfirmationAllowed" json:"isConfirmationAllowed"`
	Address               string `csv:"address" json:"address"`
}

func (c Center) Fields() Fields {
	return Fields{
		"centerType":            c.CenterType,
		"sapPlantCode":          c.SAPPlantCode,
		"centerName":            c.CenterName,
		"contactNumber":         c.ContactNumber,
		"email":                 c.Email,
		"inProductionAllowed":   c.InProductionAllowed,
		"isConfirmationAllowed": c.IsConfirmationAllowed,
		"address":               c.Address,
	}
}

type Mandi struct {
	Name    string `csv:"name" json:"name"`
	Contact string `csv:"contact" json:"contact"`
	Region  string `csv:"region" json:"region"`
}

func (m Mandi) Fields() Fields {
	return Fields{"name": m.Name, "contact": m.Contact, "region": m.Region}
}
