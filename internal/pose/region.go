package pose

// Joint names as used by authored content and the renderer.
const (
	JointItemAnchor     = "ItemAnchor"
	JointLowerArmR      = "LowerArmR"
	JointUpperArmR      = "UpperArmR"
	JointItemAnchorL    = "ItemAnchorL"
	JointLowerArmL      = "LowerArmL"
	JointUpperArmL      = "UpperArmL"
	JointNeck           = "Neck"
	JointHead           = "Head"
	JointUpperFootR     = "UpperFootR"
	JointUpperFootL     = "UpperFootL"
	JointLowerFootR     = "LowerFootR"
	JointLowerFootL     = "LowerFootL"
	JointUpperTorso     = "UpperTorso"
	JointLowerTorso     = "LowerTorso"
	JointDetachedAnchor = "DetachedAnchor"
)

var (
	RightHandJoints  = []string{JointItemAnchor, JointLowerArmR, JointUpperArmR}
	LeftHandJoints   = []string{JointItemAnchorL, JointLowerArmL, JointUpperArmL}
	OtherPartsJoints = []string{JointNeck, JointHead, JointUpperFootR, JointUpperFootL, JointLowerFootR, JointLowerFootL}
)

// RightHand groups the joints of the main-hand arm.
type RightHand struct {
	ItemAnchor Element
	LowerArmR  Element
	UpperArmR  Element
}

// LeftHand groups the joints of the off-hand arm.
type LeftHand struct {
	ItemAnchorL Element
	LowerArmL   Element
	UpperArmL   Element
}

// OtherParts groups the head and leg joints.
type OtherParts struct {
	Neck       Element
	Head       Element
	UpperFootR Element
	UpperFootL Element
	LowerFootR Element
	LowerFootL Element
}

func ZeroRightHand() *RightHand {
	return &RightHand{ItemAnchor: ZeroElement(), LowerArmR: ZeroElement(), UpperArmR: ZeroElement()}
}

func ZeroLeftHand() *LeftHand {
	return &LeftHand{ItemAnchorL: ZeroElement(), LowerArmL: ZeroElement(), UpperArmL: ZeroElement()}
}

func ZeroOtherParts() *OtherParts {
	return &OtherParts{
		Neck:       ZeroElement(),
		Head:       ZeroElement(),
		UpperFootR: ZeroElement(),
		UpperFootL: ZeroElement(),
		LowerFootR: ZeroElement(),
		LowerFootL: ZeroElement(),
	}
}

// Members returns the elements in RightHandJoints order.
func (h *RightHand) Members() []Element {
	return []Element{h.ItemAnchor, h.LowerArmR, h.UpperArmR}
}

// Members returns the elements in LeftHandJoints order.
func (h *LeftHand) Members() []Element {
	return []Element{h.ItemAnchorL, h.LowerArmL, h.UpperArmL}
}

// Members returns the elements in OtherPartsJoints order.
func (o *OtherParts) Members() []Element {
	return []Element{o.Neck, o.Head, o.UpperFootR, o.UpperFootL, o.LowerFootR, o.LowerFootL}
}

// RightHandFromMembers is the inverse of Members. Missing entries are zero-filled.
func RightHandFromMembers(m []Element) *RightHand {
	m = padMembers(m, len(RightHandJoints))
	return &RightHand{ItemAnchor: m[0], LowerArmR: m[1], UpperArmR: m[2]}
}

// LeftHandFromMembers is the inverse of Members. Missing entries are zero-filled.
func LeftHandFromMembers(m []Element) *LeftHand {
	m = padMembers(m, len(LeftHandJoints))
	return &LeftHand{ItemAnchorL: m[0], LowerArmL: m[1], UpperArmL: m[2]}
}

// OtherPartsFromMembers is the inverse of Members. Missing entries are zero-filled.
func OtherPartsFromMembers(m []Element) *OtherParts {
	m = padMembers(m, len(OtherPartsJoints))
	return &OtherParts{
		Neck:       m[0],
		Head:       m[1],
		UpperFootR: m[2],
		UpperFootL: m[3],
		LowerFootR: m[4],
		LowerFootL: m[5],
	}
}

func padMembers(m []Element, n int) []Element {
	result := make([]Element, n)
	for i := range result {
		if i < len(m) {
			result[i] = m[i].Clone()
		} else {
			result[i] = ZeroElement()
		}
	}
	return result
}

// interpolateMembers blends two member lists of the same region.
func interpolateMembers(from, to []Element, progress float32) []Element {
	result := make([]Element, len(to))
	for i := range to {
		result[i] = InterpolateElement(from[i], to[i], progress)
	}
	return result
}

// composeMembers composes a region from the inputs that define it.
func composeMembers(inputs []Weighted[[]Element], size int) []Element {
	result := make([]Element, size)
	column := make([]Weighted[Element], len(inputs))
	for i := range result {
		for j, in := range inputs {
			column[j] = Weighted[Element]{Value: in.Value[i], Weight: in.Weight}
		}
		result[i] = ComposeElement(column)
	}
	return result
}
