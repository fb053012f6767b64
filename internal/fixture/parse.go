// Package fixture loads users and groups into a Store, either from a JSON document or as generated demo data.
package fixture

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"
)

var ErrMalformed = errors.New("malformed fixture")

type User struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Group references its creator and members by email
type Group struct {
	Name    string
	Creator string
	Members []string
}

type Fixture struct {
	Users  []User
	Groups []Group
}

var parserPool fastjson.ParserPool

// Parse reads {"users":[...],"groups":[...]}, both arrays are optional
func Parse(data []byte) (Fixture, error) {
	parser := parserPool.Get()
	defer parserPool.Put(parser)

	v, err := parser.ParseBytes(data)
	if err != nil {
		return Fixture{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if v.Type() != fastjson.TypeObject {
		return Fixture{}, fmt.Errorf("%w: document must be an object", ErrMalformed)
	}

	var fx Fixture

	userValues, err := optionalArray(v, "users")
	if err != nil {
		return Fixture{}, err
	}
	for i, uv := range userValues {
		path := fmt.Sprintf("users[%d]", i)
		var u User
		if u.FirstName, err = requiredString(uv, path, "first_name"); err != nil {
			return Fixture{}, err
		}
		if u.LastName, err = requiredString(uv, path, "last_name"); err != nil {
			return Fixture{}, err
		}
		if u.Email, err = requiredString(uv, path, "email"); err != nil {
			return Fixture{}, err
		}
		if u.Password, err = requiredString(uv, path, "password"); err != nil {
			return Fixture{}, err
		}
		fx.Users = append(fx.Users, u)
	}

	groupValues, err := optionalArray(v, "groups")
	if err != nil {
		return Fixture{}, err
	}
	for i, gv := range groupValues {
		path := fmt.Sprintf("groups[%d]", i)
		var g Group
		if g.Name, err = requiredString(gv, path, "name"); err != nil {
			return Fixture{}, err
		}
		if g.Creator, err = requiredString(gv, path, "creator"); err != nil {
			return Fixture{}, err
		}

		memberValues, err := optionalArray(gv, "members")
		if err != nil {
			return Fixture{}, fmt.Errorf("%s: %w", path, err)
		}
		for j, mv := range memberValues {
			email, err := stringValue(mv)
			if err != nil {
				return Fixture{}, fmt.Errorf("%w: each item in \"%s.members\" must be a non-empty string (index %d)", ErrMalformed, path, j)
			}
			g.Members = append(g.Members, email)
		}
		fx.Groups = append(fx.Groups, g)
	}

	return fx, nil
}

func optionalArray(v *fastjson.Value, key string) ([]*fastjson.Value, error) {
	if !v.Exists(key) {
		return nil, nil
	}
	values, err := v.Get(key).Array()
	if err != nil {
		return nil, fmt.Errorf("%w: field %q must be an array", ErrMalformed, key)
	}
	return values, nil
}

func requiredString(v *fastjson.Value, path, key string) (string, error) {
	if v.Type() != fastjson.TypeObject {
		return "", fmt.Errorf("%w: %q must be an object", ErrMalformed, path)
	}
	if !v.Exists(key) {
		return "", fmt.Errorf("%w: missing field \"%s.%s\"", ErrMalformed, path, key)
	}
	s, err := stringValue(v.Get(key))
	if err != nil {
		return "", fmt.Errorf("%w: field \"%s.%s\" must be a non-empty string", ErrMalformed, path, key)
	}
	return s, nil
}

func stringValue(v *fastjson.Value) (string, error) {
	b, err := v.StringBytes()
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "", errors.New("empty string")
	}
	return s, nil
}
