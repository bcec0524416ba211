package main

import (
	"reflect"
	"testing"

	"github.com/decker502/animcore/internal/pose"
)

func TestFrameJoints(t *testing.T) {
	f := pose.EmptyFrame()
	f.Player.RightHand = pose.ZeroRightHand()
	torso := pose.ZeroElement()
	f.Player.UpperTorso = &torso
	item := pose.NewItemPose(map[string]pose.Element{"Blade": pose.ZeroElement()})
	f.Item = &item

	expected := []string{pose.JointItemAnchor, pose.JointLowerArmR, pose.JointUpperArmR, pose.JointUpperTorso, "Blade"}
	if got := frameJoints(f); !reflect.DeepEqual(got, expected) {
		t.Errorf("frameJoints() = %v, expected %v", got, expected)
	}
}

func TestLegacyShapes(t *testing.T) {
	s, err := legacyShapes([]string{"../../internal/shape/testdata/sword.json"})
	if err != nil {
		t.Fatalf("legacyShapes failed: %v", err)
	}
	if _, err := s.AnimationByCode("hit"); err != nil {
		t.Errorf("hit should resolve: %v", err)
	}

	empty, err := legacyShapes(nil)
	if err != nil || len(empty.Codes()) != 0 {
		t.Errorf("no files give an empty source, got %v, %v", empty.Codes(), err)
	}

	if _, err := legacyShapes([]string{"missing.json"}); err == nil {
		t.Error("a missing shape file must fail")
	}
}
