// server/internal/directory/service.go
package directory

import (
	"context"
	"strings"

	"gatepass-api-server/internal/cache"
	"gatepass-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Service is the identity/directory gateway. It resolves users by service
// number, role, or role+branch from the users collection, with a cache-aside
// layer in front of every lookup.
type Service struct {
	DB    *mongo.Database
	Cache *cache.Cache
}

func NewService(db *mongo.Database, c *cache.Cache) *Service {
	return &Service{DB: db, Cache: c}
}

// FindByServiceNo returns the active user with the given service number, or
// nil when no such user exists.
func (s *Service) FindByServiceNo(ctx context.Context, serviceNo string) (*models.User, error) {
	var users []models.User
	err := s.Cache.Aside(ctx, "directory:sno:"+serviceNo, &users, func() error {
		var user models.User
		err := s.DB.Collection("users").FindOne(ctx, bson.M{"serviceNo": serviceNo, "isActive": true}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			users = []models.User{}
			return nil
		}
		if err != nil {
			return err
		}
		users = []models.User{user}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// FindByRole returns all active users holding the role.
func (s *Service) FindByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	err := s.Cache.Aside(ctx, "directory:role:"+role, &users, func() error {
		cursor, err := s.DB.Collection("users").Find(ctx, bson.M{"role": role, "isActive": true})
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		if err := cursor.All(ctx, &users); err != nil {
			return err
		}
		if users == nil {
			users = []models.User{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// FindByRoleAndBranch returns the active users holding the role whose branch
// list contains the branch. Branch membership is a case-insensitive exact
// match, so the filtering happens here rather than in the query.
func (s *Service) FindByRoleAndBranch(ctx context.Context, role, branch string) ([]models.User, error) {
	users, err := s.FindByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	matched := []models.User{}
	for _, user := range users {
		for _, b := range user.Branches {
			if strings.EqualFold(b, branch) {
				matched = append(matched, user)
				break
			}
		}
	}
	return matched, nil
}
