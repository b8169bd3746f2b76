package models

import (
	"strconv"
	"time"
)

// CertificateRecord is one row of the upstream tracking API. Only the
// certificate fields are stamped onto the form.
type CertificateRecord struct {
	ID                        string `json:"_id,omitempty"`
	Stage                     string `json:"stage,omitempty"`
	Status                    string `json:"status,omitempty"`
	PatientName               string `json:"patientName"`
	PatientDOB                string `json:"patientDOB"`
	CquenceDIN                string `json:"cquenceDIN"`
	CquenceOrderID            string `json:"cquenceOrderId"`
	PatientWeight             string `json:"patientWeight"`
	BatchNumber               string `json:"batchNumber"`
	CoicBagID                 string `json:"coicBagId"`
	TotalVolume               string `json:"totalVolume"`
	ProductDose               string `json:"productDose"`
	ExpirationDate            string `json:"expirationDate"`
	ProductNDC                string `json:"productNDC"`
	PCCNumber                 string `json:"pccNumber"`
	NameAndAddress            string `json:"nameAndAddress"`
	MarketAuthorizationNumber string `json:"marketAuthorizationNumber"`
	Country                   string `json:"country"`
	CreatedAt                 string `json:"createdAt,omitempty"`
	UpdatedAt                 string `json:"updatedAt,omitempty"`
}

// Field keys understood by the certificate form.
const (
	FieldPatientName               = "patientName"
	FieldPatientDOB                = "patientDOB"
	FieldCquenceDIN                = "cquenceDIN"
	FieldCquenceOrderID            = "cquenceOrderId"
	FieldPatientWeight             = "patientWeight"
	FieldBatchNumber               = "batchNumber"
	FieldCoicBagID                 = "coicBagId"
	FieldTotalVolume               = "totalVolume"
	FieldProductDose               = "productDose"
	FieldExpirationDate            = "expirationDate"
	FieldProductNDC                = "productNDC"
	FieldPCCNumber                 = "pccNumber"
	FieldNameAndAddress            = "nameAndAddress"
	FieldMarketAuthorizationNumber = "marketAuthorizationNumber"
	FieldCountry                   = "country"
	FieldException                 = "exception"
	FieldUsername                  = "username"
	FieldSignedAt                  = "signedAt"
	FieldSignedBy                  = "signedBy"
)

// Fields returns the record's certificate fields keyed by form field key.
// Empty values are left out.
func (r CertificateRecord) Fields() map[string]string {
	fields := map[string]string{
		FieldPatientName:               r.PatientName,
		FieldPatientDOB:                r.PatientDOB,
		FieldCquenceDIN:                r.CquenceDIN,
		FieldCquenceOrderID:            r.CquenceOrderID,
		FieldPatientWeight:             r.PatientWeight,
		FieldBatchNumber:               r.BatchNumber,
		FieldCoicBagID:                 r.CoicBagID,
		FieldTotalVolume:               r.TotalVolume,
		FieldProductDose:               r.ProductDose,
		FieldExpirationDate:            r.ExpirationDate,
		FieldProductNDC:                r.ProductNDC,
		FieldPCCNumber:                 r.PCCNumber,
		FieldNameAndAddress:            r.NameAndAddress,
		FieldMarketAuthorizationNumber: r.MarketAuthorizationNumber,
		FieldCountry:                   r.Country,
	}

	for k, v := range fields {
		if v == "" {
			delete(fields, k)
		}
	}

	return fields
}

// CertificateData is everything one render of the certificate depends on.
type CertificateData struct {
	Record    CertificateRecord
	Signature *SignatureMetadata
	// Exception is nil when no selection has been made.
	Exception *bool
}

// Values flattens the data into form field values. Signing timestamps are
// expressed in loc.
func (d CertificateData) Values(loc *time.Location) map[string]string {
	values := d.Record.Fields()

	exception := d.Exception
	if d.Signature != nil {
		exception = &d.Signature.Exception
	}
	if exception != nil {
		values[FieldException] = strconv.FormatBool(*exception)
	}

	if d.Signature != nil {
		if loc == nil {
			loc = time.UTC
		}
		if d.Signature.SignedBy != "" {
			values[FieldUsername] = d.Signature.SignedBy
			values[FieldSignedBy] = d.Signature.SignedBy
		}
		if !d.Signature.SignedAt.IsZero() {
			values[FieldSignedAt] = d.Signature.SignedAt.In(loc).Format(time.RFC3339)
		}
	}

	return values
}
