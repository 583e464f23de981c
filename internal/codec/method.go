package codec

// InteractiveMethod is the closed set of method names carried on the wire.
// It round-trips through an UNKNOWN sentinel so a method name the client
// doesn't yet recognize never fails to parse — it degrades to "unknown and
// discard-only" rather than a ProtocolError.
type InteractiveMethod string

const (
	MethodCapture               InteractiveMethod = "capture"
	MethodCreateControls        InteractiveMethod = "createControls"
	MethodCreateGroups          InteractiveMethod = "createGroups"
	MethodCreateScenes          InteractiveMethod = "createScenes"
	MethodDeleteControls        InteractiveMethod = "deleteControls"
	MethodDeleteGroup           InteractiveMethod = "deleteGroup"
	MethodDeleteScene           InteractiveMethod = "deleteScene"
	MethodGetActiveParticipants InteractiveMethod = "getActiveParticipants"
	MethodGetAllParticipants    InteractiveMethod = "getAllParticipants"
	MethodGetGroups             InteractiveMethod = "getGroups"
	MethodGetMemoryStats        InteractiveMethod = "getMemoryStats"
	MethodGetScenes             InteractiveMethod = "getScenes"
	MethodGetThrottleState      InteractiveMethod = "getThrottleState"
	MethodGetTime               InteractiveMethod = "getTime"
	MethodGiveInput             InteractiveMethod = "giveInput"
	MethodHello                 InteractiveMethod = "hello"
	MethodIssueMemoryWarning    InteractiveMethod = "issueMemoryWarning"
	MethodOnControlCreate       InteractiveMethod = "onControlCreate"
	MethodOnControlDelete       InteractiveMethod = "onControlDelete"
	MethodOnControlUpdate       InteractiveMethod = "onControlUpdate"
	MethodOnGroupCreate         InteractiveMethod = "onGroupCreate"
	MethodOnGroupDelete         InteractiveMethod = "onGroupDelete"
	MethodOnGroupUpdate         InteractiveMethod = "onGroupUpdate"
	MethodOnParticipantJoin     InteractiveMethod = "onParticipantJoin"
	MethodOnParticipantLeave    InteractiveMethod = "onParticipantLeave"
	MethodOnParticipantUpdate   InteractiveMethod = "onParticipantUpdate"
	MethodOnReady               InteractiveMethod = "onReady"
	MethodOnSceneCreate         InteractiveMethod = "onSceneCreate"
	MethodOnSceneDelete         InteractiveMethod = "onSceneDelete"
	MethodOnSceneUpdate         InteractiveMethod = "onSceneUpdate"
	MethodReady                 InteractiveMethod = "ready"
	MethodSetBandwidthThrottle  InteractiveMethod = "setBandwidthThrottle"
	MethodSetCompression        InteractiveMethod = "setCompression"
	MethodUpdateControls        InteractiveMethod = "updateControls"
	MethodUpdateGroups          InteractiveMethod = "updateGroups"
	MethodUpdateParticipants    InteractiveMethod = "updateParticipants"
	MethodUpdateScenes          InteractiveMethod = "updateScenes"

	// MethodUnknown is the round-trip sentinel for any wire string outside
	// the set above.
	MethodUnknown InteractiveMethod = "UNKNOWN"
)

var knownMethods = map[string]InteractiveMethod{
	string(MethodCapture):               MethodCapture,
	string(MethodCreateControls):        MethodCreateControls,
	string(MethodCreateGroups):          MethodCreateGroups,
	string(MethodCreateScenes):          MethodCreateScenes,
	string(MethodDeleteControls):        MethodDeleteControls,
	string(MethodDeleteGroup):           MethodDeleteGroup,
	string(MethodDeleteScene):           MethodDeleteScene,
	string(MethodGetActiveParticipants): MethodGetActiveParticipants,
	string(MethodGetAllParticipants):    MethodGetAllParticipants,
	string(MethodGetGroups):             MethodGetGroups,
	string(MethodGetMemoryStats):        MethodGetMemoryStats,
	string(MethodGetScenes):             MethodGetScenes,
	string(MethodGetThrottleState):      MethodGetThrottleState,
	string(MethodGetTime):               MethodGetTime,
	string(MethodGiveInput):             MethodGiveInput,
	string(MethodHello):                 MethodHello,
	string(MethodIssueMemoryWarning):    MethodIssueMemoryWarning,
	string(MethodOnControlCreate):       MethodOnControlCreate,
	string(MethodOnControlDelete):       MethodOnControlDelete,
	string(MethodOnControlUpdate):       MethodOnControlUpdate,
	string(MethodOnGroupCreate):         MethodOnGroupCreate,
	string(MethodOnGroupDelete):         MethodOnGroupDelete,
	string(MethodOnGroupUpdate):         MethodOnGroupUpdate,
	string(MethodOnParticipantJoin):     MethodOnParticipantJoin,
	string(MethodOnParticipantLeave):    MethodOnParticipantLeave,
	string(MethodOnParticipantUpdate):   MethodOnParticipantUpdate,
	string(MethodOnReady):               MethodOnReady,
	string(MethodOnSceneCreate):         MethodOnSceneCreate,
	string(MethodOnSceneDelete):         MethodOnSceneDelete,
	string(MethodOnSceneUpdate):         MethodOnSceneUpdate,
	string(MethodReady):                 MethodReady,
	string(MethodSetBandwidthThrottle):  MethodSetBandwidthThrottle,
	string(MethodSetCompression):        MethodSetCompression,
	string(MethodUpdateControls):        MethodUpdateControls,
	string(MethodUpdateGroups):          MethodUpdateGroups,
	string(MethodUpdateParticipants):    MethodUpdateParticipants,
	string(MethodUpdateScenes):          MethodUpdateScenes,
}

// ParseMethod maps a wire string to its InteractiveMethod, falling back to
// MethodUnknown for anything not in the closed enum.
func ParseMethod(wire string) InteractiveMethod {
	if m, ok := knownMethods[wire]; ok {
		return m
	}
	return MethodUnknown
}

// IsInboundEvent reports whether name is one of the server-pushed event
// methods routed to the event bus rather than treated as a peer-initiated
// call.
func IsInboundEvent(m InteractiveMethod) bool {
	switch m {
	case MethodOnReady,
		MethodOnParticipantJoin, MethodOnParticipantLeave, MethodOnParticipantUpdate,
		MethodOnGroupCreate, MethodOnGroupDelete, MethodOnGroupUpdate,
		MethodOnSceneCreate, MethodOnSceneDelete, MethodOnSceneUpdate,
		MethodOnControlCreate, MethodOnControlDelete, MethodOnControlUpdate,
		MethodGiveInput, MethodIssueMemoryWarning:
		return true
	default:
		return false
	}
}
