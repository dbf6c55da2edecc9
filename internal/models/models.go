// Package models holds the catalog entities, their read projections and the
// domain error kinds shared by every service.
package models

import "time"

// InitialRate is the rating a product starts with before anyone rates it.
const InitialRate = 2.5

// table_name: users
type User struct {
	ID           string   `po:"id,primaryKey,text" json:"id"`
	Email        string   `po:"email,text,unique,notNull" json:"email"`
	PasswordHash string   `po:"password_hash,text,notNull" json:"-"`
	FirstName    string   `po:"first_name,text,notNull" json:"firstName"`
	LastName     string   `po:"last_name,text,notNull" json:"lastName"`
	Phone        *string  `po:"phone,text" json:"phone,omitempty"`
	Address      *string  `po:"address,text" json:"address,omitempty"`
	Image        *string  `po:"image,text" json:"image,omitempty"`
	IsTechnician bool     `po:"is_technician,boolean,notNull" json:"isTechnician"`
	ProductIDs   []string `po:"product_ids,text[],notNull,default('{}')" json:"productIds"`
}

// Summary projects the fields of u that are safe to show other users.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Address:      u.Address,
		IsTechnician: u.IsTechnician,
	}
}

// table_name: categories
type Category struct {
	ID         string   `po:"id,primaryKey,text" json:"id"`
	Name       string   `po:"name,text,unique,notNull" json:"name"`
	Image      *string  `po:"image,text" json:"image,omitempty"`
	ProductIDs []string `po:"product_ids,text[],notNull,default('{}')" json:"productIds"`
}

// Summary projects c for embedding in catalog entries.
func (c *Category) Summary() CategorySummary {
	return CategorySummary{ID: c.ID, Name: c.Name, Image: c.Image}
}

// table_name: products
type Product struct {
	ID            string    `po:"id,primaryKey,text" json:"id"`
	Name          string    `po:"name,text,notNull" json:"name"`
	Description   string    `po:"description,text,notNull" json:"description"`
	Price         float64   `po:"price,double precision,notNull" json:"price"`
	Image         *string   `po:"image,text" json:"image,omitempty"`
	Rate          float64   `po:"rate,double precision,notNull,default(2.5)" json:"rate"`
	CountUserRate int       `po:"count_user_rate,integer,notNull,default(0)" json:"countUserRate"`
	CategoryID    string    `po:"category_id,text,notNull,index" json:"categoryId"`
	OwnerID       string    `po:"owner_id,text,notNull,index" json:"ownerId"`
	FavoritedBy   []string  `po:"favorited_by,text[],notNull,default('{}'),index(gin)" json:"favoritedBy"`
	CreatedAt     time.Time `po:"created_at,timestamptz,notNull,default(now())" json:"createdAt"`
}

// IsFavoritedBy reports whether userID has favorited p.
func (p *Product) IsFavoritedBy(userID string) bool {
	for _, id := range p.FavoritedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// table_name: orders
type Order struct {
	ID        string     `po:"id,primaryKey,text" json:"id"`
	State     OrderState `po:"state,text,notNull" json:"state"`
	ProductID string     `po:"product_id,text,notNull,index" json:"productId"`
	BuyerID   string     `po:"buyer_id,text,notNull,index" json:"buyerId"`
	CreatedAt time.Time  `po:"created_at,timestamptz,notNull,default(now())" json:"createdAt"`
}
