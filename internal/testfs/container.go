//go:build e2e

package testfs

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// -----------------------------------------------------------------------------
// Container - Docker container wrapper
// -----------------------------------------------------------------------------

// Container is a started Docker container that commands are executed in.
type Container struct {
	client      *client.Client
	containerID string
}

// Bind is a host directory or file mounted into the container.
type Bind struct {
	Host      string
	Container string
	ReadOnly  bool
}

// String formats b in the "host:container[:ro]" bind syntax.
func (b Bind) String() string {
	s := b.Host + ":" + b.Container
	if b.ReadOnly {
		s += ":ro"
	}
	return s
}

// NewContainer pulls imageName, then creates and starts a container that
// idles until Close. The caller is responsible for calling Close().
func NewContainer(ctx context.Context, imageName string, binds []Bind, tmpfs map[string]string) (*Container, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	if err := pullImage(ctx, cli, imageName); err != nil {
		cli.Close()
		return nil, err
	}

	bindSpecs := make([]string, len(binds))
	for i, b := range binds {
		bindSpecs[i] = b.String()
	}

	cfg := &container.Config{
		Image: imageName,
		Cmd:   []string{"sleep", "infinity"},
	}
	hostCfg := &container.HostConfig{
		Binds:      bindSpecs,
		Tmpfs:      tmpfs,
		AutoRemove: true,
	}

	resp, err := cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, "")
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("create container: %w", err)
	}

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		cli.Close()
		return nil, fmt.Errorf("start container: %w", err)
	}

	return &Container{client: cli, containerID: resp.ID}, nil
}

// Run executes a command inside the container and collects its output.
func (c *Container) Run(ctx context.Context, cmd []string) (*RunResult, error) {
	execResp, err := c.client.ContainerExecCreate(ctx, c.containerID, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("exec create: %w", err)
	}

	hijack, err := c.client.ContainerExecAttach(ctx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("exec attach: %w", err)
	}
	defer hijack.Close()

	var outBuf, errBuf bytes.Buffer
	_, _ = stdcopy.StdCopy(&outBuf, &errBuf, hijack.Reader)

	inspectResp, err := c.client.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil, fmt.Errorf("exec inspect: %w", err)
	}

	return &RunResult{
		ExitCode: inspectResp.ExitCode,
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
	}, nil
}

// Close stops the container, which removes it, and releases the client.
func (c *Container) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	defer c.client.Close()
	return c.client.ContainerStop(ctx, c.containerID, container.StopOptions{})
}

// pullImage pulls the Docker image (uses cache if already present).
func pullImage(ctx context.Context, cli *client.Client, imageName string) error {
	reader, err := cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", imageName, err)
	}
	defer reader.Close()
	_, _ = io.Copy(io.Discard, reader)
	return nil
}
