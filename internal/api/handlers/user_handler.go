package handlers

import (
	"context"
	"net/http"

	"gatepass-api-server/internal/auth"
	"gatepass-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserHandler covers login and the SuperAdmin user management surface.
type UserHandler struct {
	DB *mongo.Database
}

type loginPayload struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"userId": payload.UserID, "isActive": true}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(payload.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateJWT(user.UserID, user.ServiceNo, user.Name, user.Email, user.Role, user.Branches)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"serviceNo": user.ServiceNo,
			"name":      user.Name,
			"role":      user.Role,
			"branches":  user.Branches,
		},
	})
}

type createUserPayload struct {
	ServiceNo   string   `json:"serviceNo" binding:"required"`
	UserID      string   `json:"userId" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Email       string   `json:"email" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	Role        string   `json:"role" binding:"required"`
	Designation string   `json:"designation"`
	Section     string   `json:"section"`
	Group       string   `json:"group"`
	ContactNo   string   `json:"contactNo"`
	Branches    []string `json:"branches"`
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var payload createUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("users")
	count, err := collection.CountDocuments(context.Background(), bson.M{"$or": []bson.M{
		{"serviceNo": payload.ServiceNo},
		{"userId": payload.UserID},
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with this serviceNo or userId already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(payload.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user := models.User{
		ServiceNo:   payload.ServiceNo,
		UserID:      payload.UserID,
		Name:        payload.Name,
		Email:       payload.Email,
		Password:    hashedPassword,
		Role:        payload.Role,
		Designation: payload.Designation,
		Section:     payload.Section,
		Group:       payload.Group,
		ContactNo:   payload.ContactNo,
		Branches:    payload.Branches,
		IsActive:    true,
	}

	result, err := collection.InsertOne(context.Background(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	filter := bson.M{}
	if role := c.Query("role"); role != "" {
		filter["role"] = role
	}

	cursor, err := h.DB.Collection("users").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query users"})
		return
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err = cursor.All(context.Background(), &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, users)
}

// DeactivateUser soft-disables a user; they drop out of directory lookups.
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	serviceNo := c.Param("serviceNo")

	result, err := h.DB.Collection("users").UpdateOne(context.Background(),
		bson.M{"serviceNo": serviceNo},
		bson.M{"$set": bson.M{"isActive": false}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate user"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
