package tenants

import "time"

// Tenant is a storefront that installed the app. It owns at most one
// upstream link (the Central account it authorized) and at most one
// workspace selection (which Central workspace its widget is bound to).
type Tenant struct {
	ShopDomain     string    `json:"shop_domain" bson:"shop_domain"`
	UpstreamUserID string    `json:"upstream_user_id,omitempty" bson:"upstream_user_id,omitempty"`
	WorkspaceID    string    `json:"workspace_id,omitempty" bson:"workspace_id,omitempty"`
	LinkedAt       time.Time `json:"linked_at,omitempty" bson:"linked_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}
