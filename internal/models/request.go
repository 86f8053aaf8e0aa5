package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is one line of goods on a gate pass.
type Item struct {
	Name       string   `bson:"name" json:"name"`
	SerialNo   string   `bson:"serialNo,omitempty" json:"serialNo"`
	Category   string   `bson:"category,omitempty" json:"category"`
	Returnable bool     `bson:"returnable" json:"returnable"`
	Quantity   int      `bson:"quantity" json:"quantity"`
	Photos     []string `bson:"photos,omitempty" json:"photos"`
	Status     string   `bson:"status,omitempty" json:"status"`
}

// ReturnableItem mirrors a returnable Item plus return tracking.
type ReturnableItem struct {
	Name         string     `bson:"name" json:"name"`
	SerialNo     string     `bson:"serialNo,omitempty" json:"serialNo"`
	Quantity     int        `bson:"quantity" json:"quantity"`
	Returned     bool       `bson:"returned" json:"returned"`
	ReturnedQty  int        `bson:"returnedQty,omitempty" json:"returnedQty"`
	ReturnedDate *time.Time `bson:"returnedDate,omitempty" json:"returnedDate,omitempty"`
}

// Transport describes how the goods move between locations.
type Transport struct {
	Method        string `bson:"method,omitempty" json:"method"` // e.g. "Vehicle", "By Hand"
	VehicleNo     string `bson:"vehicleNo,omitempty" json:"vehicleNo"`
	TransporterNo string `bson:"transporterNo,omitempty" json:"transporterNo"` // service number of the transporter
}

// HandlingDetail records who handled the goods at one end of the movement.
type HandlingDetail struct {
	ServiceNo string     `bson:"serviceNo,omitempty" json:"serviceNo"`
	Name      string     `bson:"name,omitempty" json:"name"`
	HandledAt *time.Time `bson:"handledAt,omitempty" json:"handledAt,omitempty"`
}

// Request is one physical movement of goods between two locations, or to an
// external (Non-SLT) party. The referenceNumber is generated at creation and
// never changes.
type Request struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReferenceNumber string             `bson:"referenceNumber" json:"referenceNumber"`

	EmployeeServiceNo string `bson:"employeeServiceNo" json:"employeeServiceNo"`
	OutLocation       string `bson:"outLocation" json:"outLocation"`
	// InLocation is empty when the destination is a Non-SLT party.
	InLocation    string `bson:"inLocation,omitempty" json:"inLocation"`
	IsNonSltPlace bool   `bson:"isNonSltPlace" json:"isNonSltPlace"`

	// Populated only for Non-SLT destinations.
	CompanyName     string `bson:"companyName,omitempty" json:"companyName"`
	CompanyAddress  string `bson:"companyAddress,omitempty" json:"companyAddress"`
	ReceiverNIC     string `bson:"receiverNIC,omitempty" json:"receiverNIC"`
	ReceiverName    string `bson:"receiverName,omitempty" json:"receiverName"`
	ReceiverContact string `bson:"receiverContact,omitempty" json:"receiverContact"`

	ExecutiveOfficerServiceNo string `bson:"executiveOfficerServiceNo" json:"executiveOfficerServiceNo"`
	ReceiverAvailable         bool   `bson:"receiverAvailable" json:"receiverAvailable"`
	ReceiverServiceNo         string `bson:"receiverServiceNo,omitempty" json:"receiverServiceNo"`

	Items           []Item           `bson:"items" json:"items"`
	ReturnableItems []ReturnableItem `bson:"returnableItems,omitempty" json:"returnableItems"`
	Transport       Transport        `bson:"transport,omitempty" json:"transport"`
	Loading         *HandlingDetail  `bson:"loading,omitempty" json:"loading,omitempty"`
	UnLoading       *HandlingDetail  `bson:"unLoading,omitempty" json:"unLoading,omitempty"`

	// Status is the coarse lifecycle code (1..13). Denormalized from the
	// Status ledger, which holds the fine-grained per-stage state.
	Status int `bson:"status" json:"status"`
	// Show soft-hides a request without deleting it.
	Show bool `bson:"show" json:"show"`

	// Version guards against lost updates; every save is a compare-and-set.
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
