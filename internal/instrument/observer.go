package instrument

// #region observer

// Observer receives instrumentation events: completed constructions and
// patch adaptations. Used to feed the audit trail without coupling this
// package to storage.
type Observer interface {
	ConstructionCompleted(obj *Object)
	PatchAdapted(class, method string, missing []string)
}

// observer is process-wide state, set once at startup. The execution model
// is fully synchronous, so a plain variable is enough.
var observer Observer

// SetObserver installs the process-wide observer. Nil disables it.
func SetObserver(o Observer) { observer = o }

func notifyConstructed(obj *Object) {
	if observer != nil {
		observer.ConstructionCompleted(obj)
	}
}

func notifyAdapted(class, method string, missing []string) {
	if observer != nil {
		observer.PatchAdapted(class, method, missing)
	}
}

// #endregion observer
