// Package pulumimock records the resources a program registers so tests can
// assert on the declared graph without talking to a real engine.
package pulumimock

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const (
	Project = "serverless"
	Stack   = "test"
)

// Registration is one RegisterResource call seen by the mock monitor.
type Registration struct {
	Type         string
	Name         string
	Custom       bool
	Inputs       resource.PropertyMap
	Parent       string
	Dependencies []string
}

// ParentName is the logical name of the parent resource, or "" when the
// resource is parented to the stack.
func (r Registration) ParentName() string {
	return urnName(r.Parent)
}

// ParentType is the type token of the parent resource.
func (r Registration) ParentType() string {
	parts := strings.Split(r.Parent, "::")
	if len(parts) < 2 {
		return ""
	}
	qualified := parts[len(parts)-2]
	if i := strings.LastIndex(qualified, "$"); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// DependsOn reports whether the registration lists a dependency on the
// resource with the given logical name.
func (r Registration) DependsOn(name string) bool {
	for _, dep := range r.Dependencies {
		if urnName(dep) == name {
			return true
		}
	}
	return false
}

// Value walks the inputs along path, unwrapping outputs and secrets on the way.
func (r Registration) Value(path ...string) (resource.PropertyValue, bool) {
	v := resource.NewObjectProperty(r.Inputs)
	for _, key := range path {
		v = unwrap(v)
		if !v.IsObject() {
			return resource.PropertyValue{}, false
		}
		next, ok := v.ObjectValue()[resource.PropertyKey(key)]
		if !ok {
			return resource.PropertyValue{}, false
		}
		v = next
	}
	return unwrap(v), true
}

// String returns the string input at path, or "" when absent.
func (r Registration) String(path ...string) string {
	v, ok := r.Value(path...)
	if !ok || !v.IsString() {
		return ""
	}
	return v.StringValue()
}

// Number returns the numeric input at path, or 0 when absent.
func (r Registration) Number(path ...string) float64 {
	v, ok := r.Value(path...)
	if !ok || !v.IsNumber() {
		return 0
	}
	return v.NumberValue()
}

// Objects returns the elements of the array input at path.
func (r Registration) Objects(path ...string) []Registration {
	v, ok := r.Value(path...)
	if !ok || !v.IsArray() {
		return nil
	}
	var out []Registration
	for _, elem := range v.ArrayValue() {
		elem = unwrap(elem)
		if elem.IsObject() {
			out = append(out, Registration{Inputs: elem.ObjectValue()})
		}
	}
	return out
}

// Strings returns the string elements of the array input at path.
func (r Registration) Strings(path ...string) []string {
	v, ok := r.Value(path...)
	if !ok || !v.IsArray() {
		return nil
	}
	var out []string
	for _, elem := range v.ArrayValue() {
		elem = unwrap(elem)
		if elem.IsString() {
			out = append(out, elem.StringValue())
		}
	}
	return out
}

// Mocks implements pulumi.MockResourceMonitor. Every custom resource gets an
// id, a name and an arn derived from its logical name so that downstream
// inputs resolve to known values.
type Mocks struct {
	mu            sync.Mutex
	registrations []Registration
}

var _ pulumi.MockResourceMonitor = (*Mocks)(nil)

func (m *Mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	reg := Registration{
		Type:   args.TypeToken,
		Name:   args.Name,
		Custom: args.Custom,
		Inputs: args.Inputs,
	}
	if args.RegisterRPC != nil {
		reg.Parent = args.RegisterRPC.GetParent()
		reg.Dependencies = args.RegisterRPC.GetDependencies()
	}

	m.mu.Lock()
	m.registrations = append(m.registrations, reg)
	m.mu.Unlock()

	outputs := args.Inputs.Copy()
	if !args.Custom {
		return "", outputs, nil
	}
	physical := args.Name
	if v, ok := outputs["name"]; ok && v.IsString() && v.StringValue() != "" {
		physical = v.StringValue()
	} else {
		outputs["name"] = resource.NewStringProperty(physical)
	}
	outputs["arn"] = resource.NewStringProperty(mockArn(args.TypeToken, physical))
	if args.TypeToken == "aws:s3/bucket:Bucket" {
		outputs["bucket"] = resource.NewStringProperty(physical)
		return physical, outputs, nil
	}
	return physical + "_id", outputs, nil
}

func (m *Mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	return args.Args, nil
}

// Registrations returns a snapshot of everything registered so far.
func (m *Mocks) Registrations() []Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Registration(nil), m.registrations...)
}

// OfType returns the registrations with the given type token.
func (m *Mocks) OfType(typ string) []Registration {
	var out []Registration
	for _, reg := range m.Registrations() {
		if reg.Type == typ {
			out = append(out, reg)
		}
	}
	return out
}

// Named returns the registration with the given logical name.
func (m *Mocks) Named(name string) (Registration, bool) {
	for _, reg := range m.Registrations() {
		if reg.Name == name {
			return reg, true
		}
	}
	return Registration{}, false
}

// Run evaluates program against fresh mocks with the given stack config.
func Run(program pulumi.RunFunc, config map[string]string) (*Mocks, error) {
	mocks := &Mocks{}
	err := pulumi.RunErr(program,
		pulumi.WithMocks(Project, Stack, mocks),
		func(info *pulumi.RunInfo) {
			info.Config = config
		},
	)
	return mocks, err
}

func mockArn(typ, name string) string {
	service := strings.SplitN(strings.TrimPrefix(typ, "aws:"), "/", 2)[0]
	switch service {
	case "s3":
		return "arn:aws:s3:::" + name
	case "iam":
		return fmt.Sprintf("arn:aws:iam::123456789012:role/%s", name)
	case "lambda":
		return fmt.Sprintf("arn:aws:lambda:us-east-1:123456789012:function:%s", name)
	default:
		return fmt.Sprintf("arn:aws:%s:us-east-1:123456789012:%s", service, name)
	}
}

func urnName(urn string) string {
	if urn == "" {
		return ""
	}
	parts := strings.Split(urn, "::")
	return parts[len(parts)-1]
}

func unwrap(v resource.PropertyValue) resource.PropertyValue {
	for {
		switch {
		case v.IsOutput():
			v = v.OutputValue().Element
		case v.IsSecret():
			v = v.SecretValue().Element
		default:
			return v
		}
	}
}
