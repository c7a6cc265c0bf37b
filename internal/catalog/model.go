package catalog

// Song is a catalog record referenced by playlists. The core playlist
// subsystem never owns song lifecycle; it only checks existence and reads
// title/performer for listings.
type Song struct {
	ID        string `gorm:"column:id;primaryKey;size:64;not null"`
	Title     string `gorm:"column:title;size:190;not null"`
	Year      int    `gorm:"column:year"`
	Genre     string `gorm:"column:genre;size:32"`
	Performer string `gorm:"column:performer;size:190"`
	Duration  int    `gorm:"column:duration"`
	AlbumID   string `gorm:"column:album_id;size:64"`
}

// TableName provides the explicit table binding for GORM.
func (Song) TableName() string {
	return "songs"
}

// User is a directory record referenced by playlists as owner, collaborator
// or activity actor. Credential material lives elsewhere.
type User struct {
	ID       string `gorm:"column:id;primaryKey;size:64;not null"`
	Username string `gorm:"column:username;size:64;not null;uniqueIndex:idx_users_username"`
	FullName string `gorm:"column:fullname;size:190"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}
