package memstore

import (
	memdb "github.com/hashicorp/go-memdb"
)

const (
	tableProducts   = "products"
	tableProfiles   = "profiles"
	tableUsers      = "users"
	tableCartLines  = "cart_lines"
	tableOrders     = "orders"
	tableOrderLines = "order_lines"
)

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableProducts: {
				Name: tableProducts,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.IntFieldIndex{Field: "ID"}},
				},
			},
			tableProfiles: {
				Name: tableProfiles,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.IntFieldIndex{Field: "UserID"}},
				},
			},
			tableUsers: {
				Name: tableUsers,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.IntFieldIndex{Field: "ID"}},
				},
			},
			tableCartLines: {
				Name: tableCartLines,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:   "id",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.IntFieldIndex{Field: "UserID"},
								&memdb.IntFieldIndex{Field: "ProductID"},
							},
						},
					},
					"user": {Name: "user", Indexer: &memdb.IntFieldIndex{Field: "UserID"}},
				},
			},
			tableOrders: {
				Name: tableOrders,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   {Name: "id", Unique: true, Indexer: &memdb.IntFieldIndex{Field: "ID"}},
					"user": {Name: "user", Indexer: &memdb.IntFieldIndex{Field: "UserID"}},
				},
			},
			tableOrderLines: {
				Name: tableOrderLines,
				Indexes: map[string]*memdb.IndexSchema{
					"id":    {Name: "id", Unique: true, Indexer: &memdb.IntFieldIndex{Field: "ID"}},
					"order": {Name: "order", Indexer: &memdb.IntFieldIndex{Field: "OrderID"}},
				},
			},
		},
	}
}
