package model

import "time"

// DatasourceType identifies the metrics backend a datasource talks to.
type DatasourceType string

const (
	DatasourceAliyun     DatasourceType = "aliyun"
	DatasourceVolcengine DatasourceType = "volcengine"
	DatasourceZabbix     DatasourceType = "zabbix"
)

// Datasource is a configured metrics backend connection.
type Datasource struct {
	ID   string         `bson:"_id" json:"id"`
	Name string         `bson:"name" json:"name"`
	Type DatasourceType `bson:"type" json:"type"`

	Endpoint string `bson:"endpoint" json:"endpoint"`
	Region   string `bson:"region,omitempty" json:"region,omitempty"`

	AccessKey string `bson:"access_key" json:"access_key"`
	SecretKey string `bson:"secret_key" json:"-"`

	// Username/Password apply to Zabbix API auth.
	Username string `bson:"username,omitempty" json:"username,omitempty"`
	Password string `bson:"password,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
