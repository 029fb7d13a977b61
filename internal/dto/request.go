package dto

import (
	"github.com/amjkhan-git/HMCC-Calendar/internal/lifecycle"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
)

type SubmitBookingRequest struct {
	SponsorName         string `json:"sponsor_name" validate:"required,min=2,max=100"`
	SponsorEmail        string `json:"sponsor_email" validate:"required,email"`
	SponsorPhone        string `json:"sponsor_phone" validate:"required,min=7,max=20,phone"`
	SponsorOrganization string `json:"sponsor_organization" validate:"required,min=2,max=100"`
	VendorName          string `json:"vendor_name" validate:"max=100"`
	VendorContactName   string `json:"vendor_contact_name" validate:"max=100"`
	VendorPhone         string `json:"vendor_phone" validate:"omitempty,max=20,phone"`
	ExpectedGuests      *int   `json:"expected_guests" validate:"omitempty,min=1,max=500"`
	SpecialNotes        string `json:"special_notes" validate:"max=500"`
	PaymentMethod       string `json:"payment_method" validate:"omitempty,oneof=check cash zelle"`
}

func (r SubmitBookingRequest) ToInput() service.SubmitInput {
	return service.SubmitInput{
		Sponsor: lifecycle.SponsorInfo{
			Name:         r.SponsorName,
			Email:        r.SponsorEmail,
			Phone:        r.SponsorPhone,
			Organization: r.SponsorOrganization,
		},
		Vendor: lifecycle.VendorInfo{
			Name:        r.VendorName,
			ContactName: r.VendorContactName,
			Phone:       r.VendorPhone,
		},
		ExpectedGuests: r.ExpectedGuests,
		SpecialNotes:   r.SpecialNotes,
		PaymentMethod:  paymentMethod(r.PaymentMethod),
	}
}

// AdminUpdateRequest mirrors the editable fields. An absent field is left
// alone; an empty string clears it.
type AdminUpdateRequest struct {
	SponsorName         *string  `json:"sponsor_name" validate:"omitempty,min=2,max=100"`
	SponsorEmail        *string  `json:"sponsor_email" validate:"omitempty,email"`
	SponsorPhone        *string  `json:"sponsor_phone" validate:"omitempty,max=20,phone"`
	SponsorOrganization *string  `json:"sponsor_organization" validate:"omitempty,max=100"`
	VendorName          *string  `json:"vendor_name" validate:"omitempty,max=100"`
	VendorContactName   *string  `json:"vendor_contact_name" validate:"omitempty,max=100"`
	VendorPhone         *string  `json:"vendor_phone" validate:"omitempty,max=20"`
	ExpectedGuests      *int     `json:"expected_guests" validate:"omitempty,min=1,max=500"`
	SpecialNotes        *string  `json:"special_notes" validate:"omitempty,max=500"`
	FoodAmount          *float64 `json:"food_amount" validate:"omitempty,gte=0"`
	CleaningAmount      *float64 `json:"cleaning_amount" validate:"omitempty,gte=0"`
	PaymentMethod       *string  `json:"payment_method" validate:"omitempty,oneof=check cash zelle"`
	CheckNumber         *string  `json:"check_number" validate:"omitempty,max=50"`
	ExternalReference   *string  `json:"external_reference" validate:"omitempty,max=100"`
	AmountPaid          *float64 `json:"amount_paid" validate:"omitempty,gte=0"`
	PaymentStatus       *string  `json:"payment_status" validate:"omitempty,oneof=pending partial completed cancelled refunded"`
	AdminComment        *string  `json:"admin_comment" validate:"omitempty,max=500"`
}

func (r AdminUpdateRequest) ToPatch() lifecycle.UpdatePatch {
	p := lifecycle.UpdatePatch{
		SponsorName:         r.SponsorName,
		SponsorEmail:        r.SponsorEmail,
		SponsorPhone:        r.SponsorPhone,
		SponsorOrganization: r.SponsorOrganization,
		VendorName:          r.VendorName,
		VendorContactName:   r.VendorContactName,
		VendorPhone:         r.VendorPhone,
		ExpectedGuests:      r.ExpectedGuests,
		SpecialNotes:        r.SpecialNotes,
		FoodAmount:          r.FoodAmount,
		CleaningAmount:      r.CleaningAmount,
		CheckNumber:         r.CheckNumber,
		ExternalReference:   r.ExternalReference,
		AmountPaid:          r.AmountPaid,
		AdminComment:        r.AdminComment,
	}
	if r.PaymentMethod != nil {
		p.PaymentMethod = paymentMethod(*r.PaymentMethod)
	}
	if r.PaymentStatus != nil && *r.PaymentStatus != "" {
		s := models.PaymentStatus(*r.PaymentStatus)
		p.PaymentStatus = &s
	}
	return p
}

type PaymentUpdateRequest struct {
	PaymentStatus     string   `json:"payment_status" validate:"required,oneof=pending partial completed cancelled refunded"`
	AmountPaid        *float64 `json:"amount_paid" validate:"omitempty,gte=0"`
	PaymentMethod     string   `json:"payment_method" validate:"omitempty,oneof=check cash zelle"`
	CheckNumber       string   `json:"check_number" validate:"max=50"`
	ExternalReference string   `json:"external_reference" validate:"max=100"`
}

func (r PaymentUpdateRequest) ToInput() service.PaymentInput {
	return service.PaymentInput{
		Status:            models.PaymentStatus(r.PaymentStatus),
		AmountPaid:        r.AmountPaid,
		Method:            paymentMethod(r.PaymentMethod),
		CheckNumber:       r.CheckNumber,
		ExternalReference: r.ExternalReference,
	}
}

type RejectRequest struct {
	Reason string `json:"rejection_reason" validate:"max=500"`
}

type BlockRequest struct {
	Blocked *bool `json:"blocked" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func paymentMethod(s string) *models.PaymentMethod {
	if s == "" {
		return nil
	}
	m := models.PaymentMethod(s)
	return &m
}
