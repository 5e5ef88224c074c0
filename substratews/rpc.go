package substratews

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clawinfra/substrate"
)

var _ substrate.RPCClient = (*Client)(nil)

func hashParam(h *substrate.Hash) any {
	if h == nil {
		return nil
	}
	return encodeHexBytes(h[:])
}

// Storage implements substrate.RPCClient.
func (c *Client) Storage(ctx context.Context, key []byte, at *substrate.Hash) ([]byte, bool, error) {
	raw, err := c.call(ctx, "state_getStorage", []any{encodeHexBytes(key), hashParam(at)})
	if err != nil {
		return nil, false, err
	}
	var hexVal *string
	if err := json.Unmarshal(raw, &hexVal); err != nil {
		return nil, false, fmt.Errorf("substratews: decode state_getStorage: %w", err)
	}
	if hexVal == nil {
		return nil, false, nil
	}
	value, err := decodeHexBytes(*hexVal)
	if err != nil {
		return nil, false, fmt.Errorf("substratews: decode storage value: %w", err)
	}
	return value, true, nil
}

// StorageKeysPaged implements substrate.RPCClient.
func (c *Client) StorageKeysPaged(ctx context.Context, prefix []byte, count uint32, startKey []byte, at *substrate.Hash) ([][]byte, error) {
	var startParam any
	if startKey != nil {
		startParam = encodeHexBytes(startKey)
	}
	raw, err := c.call(ctx, "state_getKeysPaged", []any{encodeHexBytes(prefix), count, startParam, hashParam(at)})
	if err != nil {
		return nil, err
	}
	var hexKeys []string
	if err := json.Unmarshal(raw, &hexKeys); err != nil {
		return nil, fmt.Errorf("substratews: decode state_getKeysPaged: %w", err)
	}
	keys := make([][]byte, len(hexKeys))
	for i, hk := range hexKeys {
		k, err := decodeHexBytes(hk)
		if err != nil {
			return nil, fmt.Errorf("substratews: decode key %d: %w", i, err)
		}
		keys[i] = k
	}
	return keys, nil
}

type wireChangeSet struct {
	Block   string     `json:"block"`
	Changes [][2]*string `json:"changes"`
}

// QueryStorageAt implements substrate.RPCClient.
func (c *Client) QueryStorageAt(ctx context.Context, keys [][]byte, at *substrate.Hash) ([]substrate.ChangeSet, error) {
	hexKeys := make([]string, len(keys))
	for i, k := range keys {
		hexKeys[i] = encodeHexBytes(k)
	}
	raw, err := c.call(ctx, "state_queryStorageAt", []any{hexKeys, hashParam(at)})
	if err != nil {
		return nil, err
	}
	var wire []wireChangeSet
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("substratews: decode state_queryStorageAt: %w", err)
	}

	out := make([]substrate.ChangeSet, len(wire))
	for i, w := range wire {
		block, err := decodeHexHash(w.Block)
		if err != nil {
			return nil, fmt.Errorf("substratews: decode change set block hash: %w", err)
		}
		cs := substrate.ChangeSet{Block: block, Changes: make([]substrate.KeyChange, len(w.Changes))}
		for j, pair := range w.Changes {
			key, err := decodeHexBytes(*pair[0])
			if err != nil {
				return nil, fmt.Errorf("substratews: decode change key: %w", err)
			}
			kc := substrate.KeyChange{Key: key}
			if pair[1] != nil {
				value, err := decodeHexBytes(*pair[1])
				if err != nil {
					return nil, fmt.Errorf("substratews: decode change value: %w", err)
				}
				kc.Value = value
				kc.Present = true
			}
			cs.Changes[j] = kc
		}
		out[i] = cs
	}
	return out, nil
}

func numberParam(n *uint64) any {
	if n == nil {
		return nil
	}
	return *n
}

// BlockHash implements substrate.RPCClient.
func (c *Client) BlockHash(ctx context.Context, number *uint64) (substrate.Hash, bool, error) {
	raw, err := c.call(ctx, "chain_getBlockHash", []any{numberParam(number)})
	if err != nil {
		return substrate.Hash{}, false, err
	}
	var hexHash *string
	if err := json.Unmarshal(raw, &hexHash); err != nil {
		return substrate.Hash{}, false, fmt.Errorf("substratews: decode chain_getBlockHash: %w", err)
	}
	if hexHash == nil {
		return substrate.Hash{}, false, nil
	}
	h, err := decodeHexHash(*hexHash)
	if err != nil {
		return substrate.Hash{}, false, err
	}
	return h, true, nil
}

type wireHeader struct {
	ParentHash     string `json:"parentHash"`
	Number         string `json:"number"`
	StateRoot      string `json:"stateRoot"`
	ExtrinsicsRoot string `json:"extrinsicsRoot"`
	Digest         struct {
		Logs []string `json:"logs"`
	} `json:"digest"`
}

func (w wireHeader) decode() (substrate.Header, error) {
	parent, err := decodeHexHash(w.ParentHash)
	if err != nil {
		return substrate.Header{}, fmt.Errorf("parentHash: %w", err)
	}
	stateRoot, err := decodeHexHash(w.StateRoot)
	if err != nil {
		return substrate.Header{}, fmt.Errorf("stateRoot: %w", err)
	}
	extrinsicsRoot, err := decodeHexHash(w.ExtrinsicsRoot)
	if err != nil {
		return substrate.Header{}, fmt.Errorf("extrinsicsRoot: %w", err)
	}
	number, err := parseHexUint(w.Number)
	if err != nil {
		return substrate.Header{}, fmt.Errorf("number: %w", err)
	}

	digest, err := json.Marshal(w.Digest.Logs)
	if err != nil {
		return substrate.Header{}, fmt.Errorf("digest: %w", err)
	}

	return substrate.Header{
		ParentHash:     parent,
		Number:         number,
		StateRoot:      stateRoot,
		ExtrinsicsRoot: extrinsicsRoot,
		Digest:         digest,
	}, nil
}

// Header implements substrate.RPCClient.
func (c *Client) Header(ctx context.Context, at *substrate.Hash) (substrate.Header, bool, error) {
	raw, err := c.call(ctx, "chain_getHeader", []any{hashParam(at)})
	if err != nil {
		return substrate.Header{}, false, err
	}
	var w *wireHeader
	if err := json.Unmarshal(raw, &w); err != nil {
		return substrate.Header{}, false, fmt.Errorf("substratews: decode chain_getHeader: %w", err)
	}
	if w == nil {
		return substrate.Header{}, false, nil
	}
	hdr, err := w.decode()
	if err != nil {
		return substrate.Header{}, false, fmt.Errorf("substratews: %w", err)
	}
	return hdr, true, nil
}

// FinalizedHead implements substrate.RPCClient.
func (c *Client) FinalizedHead(ctx context.Context) (substrate.Hash, error) {
	raw, err := c.call(ctx, "chain_getFinalizedHead", []any{})
	if err != nil {
		return substrate.Hash{}, err
	}
	var hexHash string
	if err := json.Unmarshal(raw, &hexHash); err != nil {
		return substrate.Hash{}, fmt.Errorf("substratews: decode chain_getFinalizedHead: %w", err)
	}
	return decodeHexHash(hexHash)
}

// SubscribeBlocks implements substrate.RPCClient.
func (c *Client) SubscribeBlocks(ctx context.Context) (substrate.HeaderSubscription, error) {
	return c.subscribe(ctx, "chain_subscribeNewHeads", "chain_unsubscribeNewHeads")
}

// SubscribeFinalizedBlocks implements substrate.RPCClient.
func (c *Client) SubscribeFinalizedBlocks(ctx context.Context) (substrate.HeaderSubscription, error) {
	return c.subscribe(ctx, "chain_subscribeFinalizedHeads", "chain_unsubscribeFinalizedHeads")
}
