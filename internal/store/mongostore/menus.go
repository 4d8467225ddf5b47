package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tastyhaat/internal/models"
	"tastyhaat/internal/store"
)

type Menus struct {
	coll *mongo.Collection
}

func (r *Menus) Create(ctx context.Context, m *models.Menu) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert menu: %w", translate(err))
	}
	return nil
}

func (r *Menus) List(ctx context.Context) ([]models.Menu, error) {
	return r.find(ctx, bson.M{}, options.Find())
}

func (r *Menus) Get(ctx context.Context, id primitive.ObjectID) (*models.Menu, error) {
	var m models.Menu
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *Menus) ListByOwner(ctx context.Context, email string) ([]models.Menu, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"postedBy": email}, opts)
}

func (r *Menus) Update(ctx context.Context, id primitive.ObjectID, upd models.MenuUpdate) (*models.Menu, error) {
	set := bson.M{"updatedAt": upd.UpdatedAt}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.IsAvailable != nil {
		set["isAvailable"] = *upd.IsAvailable
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m models.Menu
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&m)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *Menus) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Menus) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Menu, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find menus: %w", err)
	}

	menus := make([]models.Menu, 0)
	if err := cur.All(ctx, &menus); err != nil {
		return nil, fmt.Errorf("decode menus: %w", err)
	}
	return menus, nil
}
