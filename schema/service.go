// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"fmt"

	"github.com/bufbuild/protoschema/types"
)

// Service is a service declaration.
type Service struct {
	object

	methods       []*Method
	methodsByName map[string]*Method
}

// NewService creates a detached service.
func NewService(name string) *Service {
	return &Service{object: object{name: name}}
}

// Methods returns the methods in the order they were attached.
func (s *Service) Methods() []*Method {
	return s.methods
}

// Method returns the method with the given name, or nil.
func (s *Service) Method(name string) *Method {
	return s.methodsByName[name]
}

// Add attaches a method. Services own nothing else.
func (s *Service) Add(child Node) error {
	m, ok := child.(*Method)
	if !ok {
		return invalidChild(s, child)
	}
	if _, dup := s.methodsByName[m.name]; dup {
		return fmt.Errorf("%w: %q in %s", ErrDuplicateName, m.name, describe(s))
	}
	if err := m.setParent(s); err != nil {
		return err
	}
	if s.methodsByName == nil {
		s.methodsByName = map[string]*Method{}
	}
	s.methods = append(s.methods, m)
	s.methodsByName[m.name] = m
	return nil
}

// Method is an rpc declaration of a service.
type Method struct {
	object

	RequestType    types.Ref
	ResponseType   types.Ref
	RequestStream  bool
	ResponseStream bool
}

// NewMethod creates a detached method.
func NewMethod(name, requestType, responseType string, requestStream, responseStream bool) *Method {
	return &Method{
		object:         object{name: name},
		RequestType:    types.Of(requestType),
		ResponseType:   types.Of(responseType),
		RequestStream:  requestStream,
		ResponseStream: responseStream,
	}
}
