package tenants

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/centralhq/shopify-relay/internal/apperrors"
)

// MongoRepo is a MongoDB-backed implementation of the Repo interface.
// One document per shop, keyed by shop_domain.
type MongoRepo struct {
	tenants *mongo.Collection
}

var _ Repo = (*MongoRepo)(nil)

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{tenants: db.Collection("tenant_links")}
}

func (r *MongoRepo) Get(ctx context.Context, shopDomain string) (*Tenant, error) {
	var tenant Tenant
	err := r.tenants.FindOne(ctx, bson.M{"shop_domain": shopDomain}).Decode(&tenant)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *MongoRepo) Upsert(ctx context.Context, tenant *Tenant) error {
	filter := bson.M{"shop_domain": tenant.ShopDomain}
	update := bson.M{"$set": bson.M{
		"upstream_user_id": tenant.UpstreamUserID,
		"workspace_id":     tenant.WorkspaceID,
		"linked_at":        tenant.LinkedAt,
		"updated_at":       time.Now().UTC(),
	}}
	_, err := r.tenants.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoRepo) Link(ctx context.Context, shopDomain, upstreamUserID string) error {
	now := time.Now().UTC()

	// Clearing the workspace on an account switch and setting the new link
	// are two steps; the clear runs first so a failure between them can
	// only leave the selection empty, never stale.
	_, err := r.tenants.UpdateOne(ctx,
		bson.M{
			"shop_domain":      shopDomain,
			"upstream_user_id": bson.M{"$nin": bson.A{upstreamUserID, "", nil}},
		},
		bson.M{"$set": bson.M{"workspace_id": ""}},
	)
	if err != nil {
		return err
	}

	_, err = r.tenants.UpdateOne(ctx,
		bson.M{"shop_domain": shopDomain},
		bson.M{"$set": bson.M{
			"upstream_user_id": upstreamUserID,
			"linked_at":        now,
			"updated_at":       now,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MongoRepo) SelectWorkspace(ctx context.Context, shopDomain, workspaceID string) error {
	res, err := r.tenants.UpdateOne(ctx,
		bson.M{"shop_domain": shopDomain},
		bson.M{"$set": bson.M{
			"workspace_id": workspaceID,
			"updated_at":   time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *MongoRepo) ResolveUpstreamUser(ctx context.Context, shopDomain string) (string, error) {
	if shopDomain == "" {
		return "", apperrors.ErrMissingTenant
	}

	tenant, err := r.Get(ctx, shopDomain)
	if err == apperrors.ErrNotFound {
		return "", apperrors.ErrUnlinkedTenant
	}
	if err != nil {
		return "", err
	}
	if tenant.UpstreamUserID == "" {
		return "", apperrors.ErrUnlinkedTenant
	}
	return tenant.UpstreamUserID, nil
}
