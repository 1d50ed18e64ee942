package guidance

import (
	"fmt"
	"strings"

	"github.com/sentiero-app/sentiero/pkg"
	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
)

// WalkingSteps. turn raw path legs into spoken walking steps. durations come
// from the leg distance at child walking speed, never from the upstream router.
func WalkingSteps(legs []datastructure.PathLeg) []datastructure.Step {
	steps := make([]datastructure.Step, 0, len(legs))
	for _, leg := range legs {
		instruction := maneuverDescription(leg.GetManeuverKind(), leg.GetManeuverModifier(),
			leg.GetRoadName())
		duration := leg.GetDistanceMeters() / pkg.WALKING_SPEED_MS
		steps = append(steps, datastructure.NewStep(instruction, leg.GetRoadName(),
			leg.GetDistanceMeters(), duration, pkg.WALK_MODE, ""))
	}
	return steps
}

// TransitSteps. boarding and alighting steps for one transit segment.
func TransitSteps(segment datastructure.TransitSegment) []datastructure.Step {
	board := datastructure.NewStep(
		fmt.Sprintf("Take bus line %s from %s", segment.GetLine(), segment.GetFromStop().GetName()),
		segment.GetFromStop().GetName(),
		geo.TotalLengthMeters(segment.GetGeometry()),
		segment.GetDurationSeconds(),
		pkg.TRANSIT_MODE, segment.GetLine())
	alight := datastructure.NewStep(
		fmt.Sprintf("Get off at %s", segment.GetToStop().GetName()),
		segment.GetToStop().GetName(), 0, 0,
		pkg.TRANSIT_MODE, segment.GetLine())
	return []datastructure.Step{board, alight}
}

func maneuverDescription(kind, modifier, streetName string) string {
	switch kind {
	case "depart":
		if isEmpty(streetName) {
			return "Head out"
		}
		return fmt.Sprintf("Head toward %s", streetName)
	case "arrive":
		return "you have arrived at your destination"
	case "roundabout", "rotary", "roundabout turn":
		return "Enter the roundabout"
	case "fork":
		return keepDescription(modifier, streetName)
	case "continue", "new name":
		if isEmpty(streetName) {
			return "Continue"
		}
		return fmt.Sprintf("Continue onto %s", streetName)
	default:
		dir := turnDescription(modifier)
		if isEmpty(streetName) {
			return dir
		}
		if dir == "Continue" {
			return fmt.Sprintf("Continue onto %s", streetName)
		}
		return fmt.Sprintf("%s onto %s", dir, streetName)
	}
}

func turnDescription(modifier string) string {
	switch modifier {
	case "uturn":
		return "Make U-turn"
	case "sharp left":
		return "Turn sharp left"
	case "left":
		return "Turn left"
	case "slight left":
		return "Turn slight left"
	case "slight right":
		return "Turn slight right"
	case "right":
		return "Turn right"
	case "sharp right":
		return "Turn sharp right"
	default:
		return "Continue"
	}
}

func keepDescription(modifier, streetName string) string {
	dir := "Keep right"
	if strings.Contains(modifier, "left") {
		dir = "Keep left"
	}
	if isEmpty(streetName) {
		return dir
	}
	return fmt.Sprintf("%s to continue on %s", dir, streetName)
}

func isEmpty(str string) bool {
	return strings.TrimSpace(str) == ""
}
