package models

// RegisterModels lists every model handed to AutoMigrate.
func RegisterModels() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Reaction{},
		&Comment{},
	}
}
