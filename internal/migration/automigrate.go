package migration

import (
	leaddomain "github.com/evoleadai/evolead/internal/lead/domain"
	organizationdomain "github.com/evoleadai/evolead/internal/organization/domain"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	searchcachedomain "github.com/evoleadai/evolead/internal/searchcache/domain"
	usagedomain "github.com/evoleadai/evolead/internal/usage/domain"
	"gorm.io/gorm"
)

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&organizationdomain.Organization{},
		&organizationdomain.Member{},
		&searchdomain.UserSearch{},
		&leaddomain.Lead{},
		&leaddomain.Metadata{},
		&usagedomain.Record{},
		&searchcachedomain.Entry{},
	)
}
