package main

import (
	"bufio"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/bnema/wandmouse/internal/device"
	"github.com/bnema/wandmouse/internal/event"
	"github.com/bnema/wandmouse/internal/geometry"
)

func testMotion() Motion {
	return Motion{
		Origin: r3.Vec{Y: 1.375},
		Yaw:    0.5,
		Pitch:  0.35,
		Period: 6 * time.Second,
	}
}

func TestPoseAtStartPointsAtCentre(t *testing.T) {
	pose := testMotion().PoseAt(0)

	proj, err := geometry.Project(pose.Position, pose.Orientation, geometry.DefaultScreenPlane, geometry.Identity, 1920, 1080)
	require.NoError(t, err)
	assert.Equal(t, geometry.Pixel{X: 960, Y: 540}, proj.Pixel)
}

func TestPoseAtStaysOnScreen(t *testing.T) {
	m := testMotion()
	for step := time.Duration(0); step < m.Period; step += 100 * time.Millisecond {
		pose := m.PoseAt(step)
		proj, err := geometry.Project(pose.Position, pose.Orientation, geometry.DefaultScreenPlane, geometry.Identity, 1920, 1080)
		require.NoError(t, err)
		plane := geometry.DefaultScreenPlane
		assert.True(t, proj.Hit.X > plane.XMin && proj.Hit.X < plane.XMax, "sample at %s left the screen: %v", step, proj.Hit)
		assert.True(t, proj.Hit.Y > plane.YMin && proj.Hit.Y < plane.YMax, "sample at %s left the screen: %v", step, proj.Hit)
	}
}

func TestRunWritesLines(t *testing.T) {
	m := testMotion()
	m.Count = 5
	m.ClickEvery = 2
	m.Button = 3

	var buf bytes.Buffer
	sent, err := m.Run(context.Background(), &lineEmitter{w: &buf})
	require.NoError(t, err)

	var kinds []string
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		ev, ok, err := device.ParseLine(scanner.Text())
		require.NoError(t, err)
		require.True(t, ok)
		switch ev.Kind {
		case event.KindPose:
			kinds = append(kinds, "P")
		case event.KindButton:
			assert.Equal(t, 3, ev.Button.Index)
			if ev.Button.Pressed {
				kinds = append(kinds, "B1")
			} else {
				kinds = append(kinds, "B0")
			}
		}
	}
	assert.Equal(t, []string{"P", "P", "P", "B1", "B0", "P", "P", "B1", "B0"}, kinds)
	assert.Equal(t, len(kinds), sent)
}

func TestRunStopsOnCancel(t *testing.T) {
	m := testMotion()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, err := m.Run(ctx, &lineEmitter{w: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestParseOrigin(t *testing.T) {
	v, err := parseOrigin("[0, 1.5,-2]")
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 0, Y: 1.5, Z: -2}, v)

	_, err = parseOrigin("[0,1]")
	assert.Error(t, err)
	_, err = parseOrigin("[a,b,c]")
	assert.Error(t, err)
}
