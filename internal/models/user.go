package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User matches the document in MongoDB. ServiceNo is the business key used
// for routing; UserID is the login key.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ServiceNo   string             `bson:"serviceNo" json:"serviceNo"`
	UserID      string             `bson:"userId" json:"userId"`
	Name        string             `bson:"name" json:"name"`
	Designation string             `bson:"designation,omitempty" json:"designation"`
	Section     string             `bson:"section,omitempty" json:"section"`
	Group       string             `bson:"group,omitempty" json:"group"`
	ContactNo   string             `bson:"contactNo,omitempty" json:"contactNo"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"`
	Role        string             `bson:"role" json:"role"`
	// Branches are the locations the user can act for. Role and branch
	// jointly determine routing.
	Branches []string `bson:"branches,omitempty" json:"branches"`
	IsActive bool     `bson:"isActive" json:"isActive"`
}
