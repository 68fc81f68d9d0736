// Package graph exposes a virtual filesystem root as a tool-dispatching
// service provider.
package graph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/AFatNiBBa/config-fs/internal/infrastructure/logging"
	"github.com/AFatNiBBa/config-fs/internal/origin"
	"github.com/AFatNiBBa/config-fs/internal/shared/types"
	"github.com/AFatNiBBa/config-fs/internal/vfs"
)

// Provider serves graph operations over a single root.
type Provider struct {
	root   *vfs.Root
	loader *origin.Loader
	logger *logging.Logger
}

// NewProvider creates a graph provider. The loader may be nil when the
// graph has no on-disk origin; graph.save then reports failure.
func NewProvider(root *vfs.Root, loader *origin.Loader, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Provider{root: root, loader: loader, logger: logger}
}

// Root returns the provider's graph root.
func (p *Provider) Root() *vfs.Root {
	return p.root
}

// Definition returns service metadata.
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "graph",
		Name:        "Graph Service",
		Description: "Virtual filesystem operations over the object graph",
		Category:    types.CategoryGraph,
		Capabilities: []string{
			"list",
			"read",
			"append",
			"write",
			"delete",
			"save",
		},
		Tools: []types.Tool{
			{
				ID:          "graph.read",
				Name:        "Read Node",
				Description: "Read the content a path resolves to",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Virtual path", Required: true},
					{Name: "folder", Type: "boolean", Description: "Navigate lists by index"},
				},
				Returns: "string",
			},
			{
				ID:          "graph.list",
				Name:        "List Node",
				Description: "List the keys under a path",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Virtual path", Required: true},
				},
				Returns: "array",
			},
			{
				ID:          "graph.write",
				Name:        "Write Node",
				Description: "Overwrite the content a path resolves to",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Virtual path", Required: true},
					{Name: "data", Type: "string", Description: "Content to write", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "graph.append",
				Name:        "Append to Node",
				Description: "Append content after the current value",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Virtual path", Required: true},
					{Name: "data", Type: "string", Description: "Content to append", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "graph.delete",
				Name:        "Delete Node",
				Description: "Remove the entry a path resolves to",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Virtual path", Required: true},
					{Name: "delete_real", Type: "boolean", Description: "Also remove a delegated real file"},
					{Name: "ignore_path", Type: "boolean", Description: "Delete real even with leftover path"},
				},
				Returns: "boolean",
			},
			{
				ID:          "graph.save",
				Name:        "Save Graph",
				Description: "Persist the whole graph through the serializer",
				Parameters:  []types.Parameter{},
				Returns:     "string",
			},
		},
	}
}

// Execute dispatches a tool call.
func (p *Provider) Execute(toolID string, params map[string]interface{}, ctx *types.Context) (*types.Result, error) {
	if ctx != nil {
		p.root.SetContext(ctx.Request, ctx.Response)
	}
	switch toolID {
	case "graph.read":
		return p.read(params)
	case "graph.list":
		return p.list(params)
	case "graph.write":
		return p.write(params, false)
	case "graph.append":
		return p.write(params, true)
	case "graph.delete":
		return p.delete(params)
	case "graph.save":
		return p.save()
	}
	return nil, fmt.Errorf("unknown tool: %s", toolID)
}

func (p *Provider) resolve(params map[string]interface{}, folderDefault bool) (*vfs.Node, string, error) {
	path, ok := params["path"].(string)
	if !ok {
		return nil, "", fmt.Errorf("path parameter required")
	}
	folder := folderDefault
	if b, ok := params["folder"].(bool); ok {
		folder = b
	}
	n, err := p.root.Get(path, folder)
	return n, path, err
}

func (p *Provider) read(params map[string]interface{}) (*types.Result, error) {
	n, path, err := p.resolve(params, false)
	if err != nil {
		return types.Failure(err.Error())
	}
	v, err := n.Read()
	if err != nil {
		return types.Failure(err.Error())
	}
	data := map[string]interface{}{
		"path":     path,
		"leftover": n.Leftover.Strings(),
		"found":    n.Value != nil,
	}
	if v != nil {
		data["content"] = string(vfs.Bytes(v))
	}
	return types.Success(data)
}

func (p *Provider) list(params map[string]interface{}) (*types.Result, error) {
	n, path, err := p.resolve(params, false)
	if err != nil {
		return types.Failure(err.Error())
	}
	v, err := n.List()
	if err != nil {
		return types.Failure(err.Error())
	}
	list, ok := v.(*vfs.List)
	if !ok {
		return types.Success(map[string]interface{}{"path": path, "listable": false})
	}
	keys := make([]string, len(list.Items))
	for i, item := range list.Items {
		keys[i] = string(vfs.Bytes(item))
	}
	return types.Success(map[string]interface{}{
		"path":     path,
		"listable": true,
		"keys":     keys,
	})
}

func (p *Provider) write(params map[string]interface{}, appendMode bool) (*types.Result, error) {
	n, path, err := p.resolve(params, false)
	if err != nil {
		return types.Failure(err.Error())
	}
	data, ok := params["data"].(string)
	if !ok {
		return types.Failure("data parameter required")
	}
	if appendMode {
		err = n.Append(vfs.Scalar(data))
	} else {
		err = n.Write(vfs.Scalar(data))
	}
	if err != nil {
		return types.Failure(err.Error())
	}
	p.logger.Debug("graph mutated",
		zap.String("path", path),
		zap.Bool("append", appendMode),
		zap.Int("size", len(data)))
	return types.Success(map[string]interface{}{"path": path, "written": len(data)})
}

func (p *Provider) delete(params map[string]interface{}) (*types.Result, error) {
	n, path, err := p.resolve(params, false)
	if err != nil {
		return types.Failure(err.Error())
	}
	deleteReal := true
	if b, ok := params["delete_real"].(bool); ok {
		deleteReal = b
	}
	ignorePath := false
	if b, ok := params["ignore_path"].(bool); ok {
		ignorePath = b
	}
	removed, err := n.Delete(deleteReal, ignorePath)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]interface{}{"path": path, "removed": removed})
}

func (p *Provider) save() (*types.Result, error) {
	if p.loader == nil || p.root.Origin() == nil {
		return types.Failure("graph has no on-disk origin to save to")
	}
	location, err := p.loader.StoreOrigin(p.root)
	if err != nil {
		return types.Failure(err.Error())
	}
	p.logger.Info("graph saved", zap.String("location", location))
	return types.Success(map[string]interface{}{"location": location})
}
