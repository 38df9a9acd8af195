package dao

import "gorm.io/gorm"

// Models lists every table owned by the application, in dependency order.
var Models = []any{
	&Member{},
	&UserRole{},
	&MemberCommittee{},
	&Post{},
	&PostLike{},
	&PostComment{},
	&Event{},
	&MeetingAttendance{},
	&PointsLog{},
}

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}

func dropAllTables(db *gorm.DB) error {
	for i := len(Models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(Models[i]); err != nil {
			return err
		}
	}
	return nil
}

// ResetTables drops and recreates the schema. Only used by the migrate
// command with --reset and by tests.
func ResetTables(db *gorm.DB) error {
	if err := dropAllTables(db); err != nil {
		return err
	}
	return InitTables(db)
}
