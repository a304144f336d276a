package models

import (
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	TenantID    uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_code,priority:1"`
	Code        string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_tenant_code,priority:2"`
	Name        string                `gorm:"type:varchar(200);not null"`
	Description string                `gorm:"type:text"`
	Unit        string                `gorm:"type:varchar(20);not null;default:'pcs'"`
	Price       decimal.Decimal       `gorm:"type:numeric(18,4);not null;default:0"`
	MinStock    decimal.Decimal       `gorm:"type:numeric(18,4);not null;default:0"`
	Status      catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedBy   *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.TenantAggregateRoot(m.TenantID, m.CreatedBy),
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		Unit:                m.Unit,
		Price:               m.Price,
		MinStock:            m.MinStock,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.TenantID = p.TenantID
	m.CreatedBy = p.CreatedBy
	m.Code = p.Code
	m.Name = p.Name
	m.Description = p.Description
	m.Unit = p.Unit
	m.Price = p.Price
	m.MinStock = p.MinStock
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
