package model

// VerticalStaggering selects where each prognostic variable lives in the
// vertical column.
type VerticalStaggering uint8

const (
	// StaggerLevels places all variables on model levels.
	StaggerLevels VerticalStaggering = iota
	// StaggerInterfaces places w on model interfaces; u, v, theta and rho
	// stay on model levels, as under StaggerCharneyPhillips.
	StaggerInterfaces
	// StaggerCharneyPhillips places w on interfaces and u, v, theta and rho
	// on levels; rho is not moved to interfaces.
	StaggerCharneyPhillips
)

func (s VerticalStaggering) String() string {
	switch s {
	case StaggerLevels:
		return "LEV"
	case StaggerInterfaces:
		return "INT"
	case StaggerCharneyPhillips:
		return "CPH"
	}
	return "unknown"
}

// VelocityRepresentation selects the dual representation of horizontal
// velocity components stored in the state.
type VelocityRepresentation uint8

const (
	VelocityContravariant VelocityRepresentation = iota
	VelocityCovariant
)

func (v VelocityRepresentation) String() string {
	if v == VelocityCovariant {
		return "covariant"
	}
	return "contravariant"
}
