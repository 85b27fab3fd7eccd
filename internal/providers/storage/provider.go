package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vesselhq/vessel/internal/capability"
)

// Provider exposes persistent key-value storage to the application.
//
// Values are arbitrary JSON, scoped per application identifier and persisted
// through the embedded sqlite engine. A read-through cache keeps hot keys in
// memory.
type Provider struct {
	store *Store
	cache sync.Map
}

// NewProvider creates a storage provider over an open store.
func NewProvider(store *Store) *Provider {
	return &Provider{store: store}
}

// Close releases the underlying store.
func (p *Provider) Close() error {
	return p.store.Close()
}

// Definition returns capability metadata.
func (p *Provider) Definition() capability.Service {
	return capability.Service{
		ID:          "storage",
		Name:        "Storage",
		Description: "Persistent key-value storage for the application",
		Category:    capability.CategoryStorage,
		Capabilities: []string{
			"read",
			"write",
			"delete",
			"list",
		},
		Tools: []capability.Tool{
			{
				ID:          "storage.set",
				Name:        "Set Value",
				Description: "Store a value by key",
				Parameters: []capability.Parameter{
					{Name: "key", Type: "string", Description: "Storage key", Required: true},
					{Name: "value", Type: "any", Description: "Value to store", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "storage.get",
				Name:        "Get Value",
				Description: "Retrieve a value by key",
				Parameters: []capability.Parameter{
					{Name: "key", Type: "string", Description: "Storage key", Required: true},
				},
				Returns: "any",
			},
			{
				ID:          "storage.remove",
				Name:        "Remove Value",
				Description: "Delete a value by key",
				Parameters: []capability.Parameter{
					{Name: "key", Type: "string", Description: "Storage key", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "storage.keys",
				Name:        "List Keys",
				Description: "List all storage keys for this app",
				Parameters:  []capability.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "storage.entries",
				Name:        "List Entries",
				Description: "List all key/value pairs for this app",
				Parameters:  []capability.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "storage.clear",
				Name:        "Clear All",
				Description: "Remove all storage for this app",
				Parameters:  []capability.Parameter{},
				Returns:     "boolean",
			},
		},
	}
}

// Execute runs a storage operation.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *capability.Context) (*capability.Result, error) {
	if appCtx == nil || appCtx.AppID == "" {
		return capability.Failure("app context required for storage operations")
	}

	switch toolID {
	case "storage.set":
		return p.set(appCtx.AppID, params)
	case "storage.get":
		return p.get(appCtx.AppID, params)
	case "storage.remove":
		return p.remove(appCtx.AppID, params)
	case "storage.keys":
		return p.keys(appCtx.AppID)
	case "storage.entries":
		return p.entries(appCtx.AppID)
	case "storage.clear":
		return p.clear(appCtx.AppID)
	default:
		return capability.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) set(appID string, params map[string]interface{}) (*capability.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return capability.Failure("key parameter required")
	}

	value, present := params["value"]
	if !present {
		return capability.Failure("value parameter required")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return capability.Failure(fmt.Sprintf("failed to serialize value: %v", err))
	}

	if err := p.store.Set(appID, key, string(data)); err != nil {
		return capability.Failure(err.Error())
	}

	p.cache.Store(cacheKey(appID, key), value)
	return capability.Success(map[string]interface{}{"stored": true, "key": key})
}

func (p *Provider) get(appID string, params map[string]interface{}) (*capability.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return capability.Failure("key parameter required")
	}

	if cached, ok := p.cache.Load(cacheKey(appID, key)); ok {
		return capability.Success(map[string]interface{}{"value": cached})
	}

	raw, found, err := p.store.Get(appID, key)
	if err != nil {
		return capability.Failure(err.Error())
	}
	if !found {
		return capability.Success(map[string]interface{}{"value": nil})
	}

	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return capability.Failure(fmt.Sprintf("failed to deserialize: %v", err))
	}

	p.cache.Store(cacheKey(appID, key), value)
	return capability.Success(map[string]interface{}{"value": value})
}

func (p *Provider) remove(appID string, params map[string]interface{}) (*capability.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return capability.Failure("key parameter required")
	}

	deleted, err := p.store.Remove(appID, key)
	if err != nil {
		return capability.Failure(err.Error())
	}

	p.cache.Delete(cacheKey(appID, key))
	return capability.Success(map[string]interface{}{"deleted": deleted})
}

func (p *Provider) keys(appID string) (*capability.Result, error) {
	keys, err := p.store.Keys(appID)
	if err != nil {
		return capability.Failure(err.Error())
	}
	if keys == nil {
		keys = []string{}
	}
	return capability.Success(map[string]interface{}{"keys": keys})
}

func (p *Provider) entries(appID string) (*capability.Result, error) {
	raw, err := p.store.Entries(appID)
	if err != nil {
		return capability.Failure(err.Error())
	}

	entries := make(map[string]interface{}, len(raw))
	for key, data := range raw {
		var value interface{}
		if err := json.Unmarshal([]byte(data), &value); err != nil {
			return capability.Failure(fmt.Sprintf("failed to deserialize %s: %v", key, err))
		}
		entries[key] = value
	}
	return capability.Success(map[string]interface{}{"entries": entries, "count": len(entries)})
}

func (p *Provider) clear(appID string) (*capability.Result, error) {
	count, err := p.store.Clear(appID)
	if err != nil {
		return capability.Failure(err.Error())
	}

	prefix := cacheKey(appID, "")
	p.cache.Range(func(key, _ interface{}) bool {
		if k := key.(string); len(k) > len(prefix) && k[:len(prefix)] == prefix {
			p.cache.Delete(key)
		}
		return true
	})

	return capability.Success(map[string]interface{}{"cleared": true, "count": count})
}

func cacheKey(appID, key string) string {
	return appID + ":" + key
}
