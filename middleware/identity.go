package middleware

import (
	"github.com/saiset-co/sai-strate/types"
)

// deferredIdentifier is the shape a callback-style port produces when its
// identity is computed asynchronously. Identities must resolve synchronously,
// so exposing this capability is a fatal configuration error.
type deferredIdentifier interface {
	ID() <-chan string
}

// Identity resolves a middleware reference to its string identity. A
// reference is one of: an identity string (returned as-is, used for skip
// entries referring to middleware not directly imported), a Descriptor
// (namespace-qualified type name), or a Middleware instance.
//
// Resolution is referentially transparent: the same reference always yields
// the same identity within a process run.
func Identity(ref any) (string, error) {
	switch v := ref.(type) {
	case string:
		return v, nil
	case types.Descriptor:
		return v.String(), nil
	case *types.Descriptor:
		return v.String(), nil
	case types.Middleware:
		return instanceIdentity(v)
	case nil:
		return "", types.ErrReferenceInvalid
	default:
		return "", types.Errorf(types.ErrReferenceInvalid, "unsupported reference type %T", ref)
	}
}

func instanceIdentity(mw types.Middleware) (string, error) {
	if _, ok := mw.(deferredIdentifier); ok {
		return "", types.Errorf(types.ErrIdentityDeferred, "middleware %q", mw.Name())
	}

	local := mw.Name()
	if identifier, ok := mw.(types.Identifier); ok {
		if id := identifier.ID(); id != "" {
			local = id
		}
	}

	if namespaced, ok := mw.(types.Namespaced); ok {
		if ns := namespaced.Namespace(); ns != "" {
			return ns + "." + local, nil
		}
	}

	return local, nil
}
