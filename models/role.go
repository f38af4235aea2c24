package models

// ModelPermissions gates what a caller may do with one dynamic model. The
// registry itself does not enforce these: authorization happens before a
// caller asks for configs or SQL.
type ModelPermissions struct {
	CanView   bool
	CanAdd    bool
	CanEdit   bool
	CanDelete bool
}

// RolePermission is one row of the easy_roles table: what one group may do
// with one model.
type RolePermission struct {
	GroupId int
	ModelId int
	ModelPermissions
}

// UserPermissions is the composed permission set of one user over the whole
// dynamic schema.
type UserPermissions struct {
	Models    map[int]ModelPermissions
	CanExport bool
	CanLastId bool
}

func (p UserPermissions) For(modelId int) ModelPermissions {
	return p.Models[modelId]
}
