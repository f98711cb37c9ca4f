package rules

import (
	"go/token"
	"go/types"

	"relaygen/internal/diag"
)

// RequestShape is the result of successfully validating a request
// handler's signature.
type RequestShape struct {
	Request  types.Type
	Response types.Type // nil for a void request
}

// CheckRequestHandler validates the "exactly one non-context parameter;
// first parameter classified as a request; admissible return type" rule
// (spec §4.4, Request handler).
func CheckRequestHandler(sig *types.Signature, pos token.Position, preds Predicates) (RequestShape, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	params := nonContextParams(sig)

	if len(params) == 0 {
		diags = append(diags, diag.New(diag.MissingRequestParameter, pos, "request handler must declare exactly one non-context parameter"))
		return RequestShape{}, diags
	}
	if len(params) > 1 {
		diags = append(diags, diag.New(diag.InvalidHandlerSignature, pos, "request handler must declare exactly one non-context parameter"))
	}
	reqType := params[0]

	if preds.IsRequest != nil && !preds.IsRequest(reqType) {
		diags = append(diags, diag.New(diag.InvalidRequestParamType, pos, "request parameter type does not implement relay.Request"))
	}

	if d := CheckCancellationParam(sig, pos); d != nil {
		diags = append(diags, *d)
	}

	shape, ok := requestReturnShape(sig)
	if !ok {
		diags = append(diags, diag.New(diag.InvalidReturnType, pos, "request handler must return (T, error) or error"))
		return RequestShape{Request: reqType}, diags
	}
	shape.Request = reqType
	return shape, diags
}

func requestReturnShape(sig *types.Signature) (RequestShape, bool) {
	results := sig.Results()
	switch results.Len() {
	case 1:
		if IsErrorType(results.At(0).Type()) {
			return RequestShape{}, true
		}
	case 2:
		if IsErrorType(results.At(1).Type()) {
			return RequestShape{Response: results.At(0).Type()}, true
		}
	}
	return RequestShape{}, false
}

// CheckStreamHandler validates the stream-handler return-type rule: the
// return type must be the admissible lazy-sequence-of-T shape
// (iter.Seq2[T, error]).
func CheckStreamHandler(sig *types.Signature, pos token.Position, preds Predicates) (RequestShape, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	params := nonContextParams(sig)

	if len(params) == 0 {
		diags = append(diags, diag.New(diag.MissingRequestParameter, pos, "stream handler must declare exactly one non-context parameter"))
		return RequestShape{}, diags
	}
	reqType := params[0]
	if preds.IsStreamRequest != nil && !preds.IsStreamRequest(reqType) {
		diags = append(diags, diag.New(diag.InvalidRequestParamType, pos, "request parameter type does not implement relay.StreamRequest"))
	}
	if d := CheckCancellationParam(sig, pos); d != nil {
		diags = append(diags, *d)
	}

	results := sig.Results()
	if results.Len() != 1 || !IsIterSeq2(results.At(0).Type()) {
		diags = append(diags, diag.New(diag.InvalidStreamReturnType, pos, "stream handler must return iter.Seq2[T, error]"))
		return RequestShape{Request: reqType}, diags
	}
	elem := streamElementType(results.At(0).Type())
	return RequestShape{Request: reqType, Response: elem}, diags
}

func streamElementType(t types.Type) types.Type {
	named, ok := t.(*types.Named)
	if !ok {
		return nil
	}
	args := named.TypeArgs()
	if args == nil || args.Len() == 0 {
		return nil
	}
	return args.At(0)
}

// CheckNotificationHandler validates the notification-handler rule:
// exactly one non-context parameter; async-void or synchronous-void
// return.
func CheckNotificationHandler(sig *types.Signature, pos token.Position, preds Predicates) (types.Type, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	params := nonContextParams(sig)

	if len(params) != 1 {
		diags = append(diags, diag.New(diag.NotificationMissingParam, pos, "notification handler must declare exactly one non-context parameter"))
		return nil, diags
	}
	noteType := params[0]
	if preds.IsNotification != nil && !preds.IsNotification(noteType) {
		diags = append(diags, diag.New(diag.InvalidRequestParamType, pos, "notification parameter type does not implement relay.Notification"))
	}
	if d := CheckCancellationParam(sig, pos); d != nil {
		diags = append(diags, *d)
	}

	results := sig.Results()
	if results.Len() > 1 || (results.Len() == 1 && !IsErrorType(results.At(0).Type())) {
		diags = append(diags, diag.New(diag.InvalidNotificationReturn, pos, "notification handler must return nothing or error"))
	}
	return noteType, diags
}

// CheckEndpoint validates the "exactly one parameter (the request)" rule.
func CheckEndpoint(sig *types.Signature, pos token.Position) []diag.Diagnostic {
	if sig.Params().Len() != 1 {
		d := diag.New(diag.MissingRequestParameter, pos, "endpoint handler must declare exactly one parameter (the request)")
		return []diag.Diagnostic{d}
	}
	return nil
}

// CheckPipeline validates the pipeline-behavior shapes: the 3-parameter
// form (request, next, cancellation) and the generic >=2-parameter form
// whose last parameter must be context.Context.
func CheckPipeline(sig *types.Signature, pos token.Position) []diag.Diagnostic {
	var diags []diag.Diagnostic
	n := sig.Params().Len()
	if n < 2 {
		diags = append(diags, diag.New(diag.InvalidHandlerSignature, pos, "pipeline behavior must declare at least two parameters"))
		return diags
	}
	last := sig.Params().At(n - 1).Type()
	if !IsContextType(last) {
		diags = append(diags, diag.New(diag.InvalidHandlerSignature, pos, "pipeline behavior's last parameter must be context.Context"))
	}
	if n == 3 {
		next := sig.Params().At(1).Type()
		if !isDelegateShape(next) {
			diags = append(diags, diag.New(diag.InvalidHandlerSignature, pos, "pipeline behavior's second parameter must be a RequestHandlerDelegate/StreamHandlerDelegate or a nullary continuation"))
		}
	}
	results := sig.Results()
	if results.Len() == 0 || !IsErrorType(results.At(results.Len()-1).Type()) {
		diags = append(diags, diag.New(diag.InvalidReturnType, pos, "pipeline behavior must return (..., error)"))
	}
	return diags
}

func isDelegateShape(t types.Type) bool {
	if _, ok := t.(*types.Signature); ok {
		return true
	}
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	_, ok = named.Underlying().(*types.Signature)
	return ok
}
