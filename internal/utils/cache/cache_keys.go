package cache

import "fmt"

type EntityType string

const (
	EntityUser      EntityType = "user"
	EntityWallet    EntityType = "wallet"
	EntityGiftcard  EntityType = "giftcard"
	EntityAsset     EntityType = "asset"
	EntityCatalog   EntityType = "catalog"
	EntityDashboard EntityType = "dashboard"
)

type KeyType string

const (
	KeyID     KeyType = "id"
	KeyUserID KeyType = "user_id"
	KeyList   KeyType = "list"
	KeyStats  KeyType = "stats"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}
