package semantic

import (
	"testing"
)

func extractAll(t *testing.T, files map[string]string) []*FileSymbols {
	t.Helper()
	var out []*FileSymbols
	for path, src := range files {
		out = append(out, extract(t, src, path))
	}
	return out
}

func TestResolveInvocationThroughInterface(t *testing.T) {
	files := map[string]string{
		"IService.java": `public interface IService {
    void usedMethod();
}
`,
		"ServiceImpl.java": `public class ServiceImpl implements IService {
    public void usedMethod() {}
}
`,
		"App.java": `public class App {
    public void run(IService svc) {
        svc.usedMethod();
    }
}
`,
	}

	syms := extractAll(t, files)
	r := NewResolver(syms)

	var call *Invocation
	for _, f := range syms {
		for i := range f.Invocations {
			if f.Invocations[i].Name == "usedMethod" {
				call = &f.Invocations[i]
			}
		}
	}
	if call == nil {
		t.Fatal("usedMethod invocation not extracted")
	}

	bindings := r.ResolveInvocation(call)
	if len(bindings) != 2 {
		t.Fatalf("bindings = %+v, want interface target plus implementation", bindings)
	}
	if bindings[0].DeclaringType != "IService" {
		t.Errorf("primary binding = %s, want IService", bindings[0].Signature())
	}
	if bindings[1].DeclaringType != "ServiceImpl" {
		t.Errorf("dispatch binding = %s, want ServiceImpl", bindings[1].Signature())
	}
}

func TestResolveInvocationOnClassCountsInterface(t *testing.T) {
	files := map[string]string{
		"IService.java": `public interface IService {
    void ping();
}
`,
		"ServiceImpl.java": `public class ServiceImpl implements IService {
    public void ping() {}
}
`,
		"App.java": `public class App {
    public void run() {
        ServiceImpl svc = new ServiceImpl();
        svc.ping();
    }
}
`,
	}

	syms := extractAll(t, files)
	r := NewResolver(syms)

	var call *Invocation
	for _, f := range syms {
		for i := range f.Invocations {
			if f.Invocations[i].Name == "ping" {
				call = &f.Invocations[i]
			}
		}
	}
	if call == nil {
		t.Fatal("ping invocation not extracted")
	}

	bindings := r.ResolveInvocation(call)
	if len(bindings) != 2 {
		t.Fatalf("bindings = %+v, want class target plus interface member", bindings)
	}
	if bindings[0].DeclaringType != "ServiceImpl" || bindings[1].DeclaringType != "IService" {
		t.Errorf("bindings = [%s, %s]", bindings[0].Signature(), bindings[1].Signature())
	}
}

func TestResolveUnknownReceiverUniqueFallback(t *testing.T) {
	files := map[string]string{
		"Worker.java": `public class Worker {
    public void process(String job) {}
}
`,
		"App.java": `public class App {
    public void run(Object w) {
        helper().process("x");
    }
}
`,
	}

	syms := extractAll(t, files)
	r := NewResolver(syms)

	bindings := r.resolveByNameArity("process", 1)
	if len(bindings) != 1 || bindings[0].DeclaringType != "Worker" {
		t.Errorf("fallback bindings = %+v, want unique Worker.process", bindings)
	}
}

func TestResolveAmbiguousNameStaysUnresolved(t *testing.T) {
	files := map[string]string{
		"A.java": `public class A {
    public void run() {}
}
`,
		"B.java": `public class B {
    public void run() {}
}
`,
	}

	r := NewResolver(extractAll(t, files))

	if bindings := r.resolveByNameArity("run", 0); bindings != nil {
		t.Errorf("ambiguous fallback = %+v, want nil", bindings)
	}
}

func TestStructuralImplementsForGo(t *testing.T) {
	files := map[string]string{
		"store.go": `package store

type Reader interface {
	Fetch(key string) string
}

type DiskStore struct{}

func (s *DiskStore) Fetch(key string) string { return "" }
`,
	}

	r := NewResolver(extractAll(t, files))

	ifaces := r.ImplementedInterfaces("DiskStore")
	if len(ifaces) != 1 || ifaces[0] != "Reader" {
		t.Errorf("ImplementedInterfaces(DiskStore) = %v, want [Reader]", ifaces)
	}

	impls := r.Implementers("Reader")
	if len(impls) != 1 || impls[0] != "DiskStore" {
		t.Errorf("Implementers(Reader) = %v, want [DiskStore]", impls)
	}
}

func TestSites(t *testing.T) {
	files := map[string]string{
		"IService.java": `public interface IService {
    void ping();
}
`,
		"ServiceImpl.java": `public class ServiceImpl implements IService {
    public void ping() {}
}
`,
	}

	r := NewResolver(extractAll(t, files))

	sites := r.Sites(Binding{DeclaringType: "IService", Name: "ping", Params: nil})
	if len(sites) != 1 {
		t.Fatalf("sites = %d, want 1", len(sites))
	}
	if sites[0].Path != "IService.java" {
		t.Errorf("site path = %s, want IService.java", sites[0].Path)
	}
	if sites[0].Method.Node == nil {
		t.Error("site method node should be set")
	}

	if sites := r.Sites(Binding{DeclaringType: "Missing", Name: "x"}); sites != nil {
		t.Errorf("sites for unknown binding = %+v, want nil", sites)
	}
}
